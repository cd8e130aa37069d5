package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// State is the per-player wager state machine. Settled is transient: the
// session returns to Idle in the same sync that observes the settlement.
type State int

const (
	Idle State = iota
	Pending
)

// NoticeKind labels user-visible notifications so the UI (and tests) can
// distinguish rejections from game results.
type NoticeKind string

const (
	NoticeInfo       NoticeKind = "info"
	NoticeWin        NoticeKind = "win"
	NoticeLose       NoticeKind = "lose"
	NoticeValidation NoticeKind = "validation"
	NoticeBlocked    NoticeKind = "blocked"
	NoticeBalance    NoticeKind = "balance"
	NoticeReassigned NoticeKind = "reassigned"
	NoticeRemoved    NoticeKind = "removed"
)

type Notice struct {
	Kind  NoticeKind
	Title string
	Body  string
}

// Session orchestrates one player's view of the game: active server, open
// position, cached balance. It polls the shared state and reconciles
// against writes it did not make itself (admin balance mutations, category
// reassignments, settlement by the timer process).
type Session struct {
	playerID string
	ledger   *bet.Ledger
	rounds   *repository.RoundRepository
	wagers   *repository.WagerRepository
	players  *repository.PlayerRepository
	history  *repository.HistoryRepository
	events   event.Publisher
	seen     *gocache.Cache
	log      *slog.Logger

	mu             sync.Mutex
	server         model.ServerID
	state          State
	activeCategory model.BetCategory
	activeTotal    int
	placedServer   model.ServerID
	placedSeri     int64
	cachedBalance  int
	historySeen    int

	notices chan Notice
}

func New(
	playerID string,
	server model.ServerID,
	ledger *bet.Ledger,
	rounds *repository.RoundRepository,
	wagers *repository.WagerRepository,
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	events event.Publisher,
	log *slog.Logger,
) *Session {
	s := &Session{
		playerID: playerID,
		server:   server,
		ledger:   ledger,
		rounds:   rounds,
		wagers:   wagers,
		players:  players,
		history:  history,
		events:   events,
		seen:     gocache.New(10*time.Minute, 20*time.Minute),
		log:      log,
		notices:  make(chan Notice, 32),
	}

	ctx := context.Background()
	s.cachedBalance = players.Balance(ctx, playerID)
	s.historySeen = len(history.Bets(ctx, playerID))

	return s
}

// Run polls the shared state until the context ends. The poll period is the
// worst-case staleness of everything the session displays.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Notices is the session's notification feed. Sends never block; when the
// buffer is full the notice is dropped and logged.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

func (s *Session) PlayerID() string { return s.playerID }

func (s *Session) Server() model.ServerID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.server
}

// SwitchServer changes which lane the player is watching. An open position
// stays on the lane it was placed on and settles there.
func (s *Session) SwitchServer(server model.ServerID) error {
	if !server.Valid() {
		return errs.Validationf("unknown server %q", server)
	}

	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	return nil
}

// Balance returns the session's cached balance, refreshed on every sync.
func (s *Session) Balance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cachedBalance
}

// Position returns the open position, if any.
func (s *Session) Position() (model.BetCategory, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeCategory, s.activeTotal, s.state == Pending
}

// PlaceBet places or grows a wager on the active server's current round.
func (s *Session) PlaceBet(ctx context.Context, cat model.BetCategory, amount int) error {
	const op = "game.session.Session.PlaceBet"

	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	round := s.rounds.GetRound(ctx, server)
	if !round.IsActive {
		err := errs.Validationf("round timer is not active yet")
		s.reject(err)

		return err
	}

	agg, err := s.ledger.Place(ctx, s.playerID, cat, amount, server, round.Seri)
	if err != nil {
		s.reject(err)

		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.state = Pending
	s.activeCategory = cat
	s.activeTotal = agg.Total
	s.placedServer = server
	s.placedSeri = round.Seri
	s.cachedBalance -= amount
	s.mu.Unlock()

	s.notify(Notice{
		Kind:  NoticeInfo,
		Title: "Bet placed",
		Body: fmt.Sprintf("Bet %s for %s on seri %s. Potential win: %s (x2)",
			cat, format.Amount(agg.Total), format.Seri(round.Seri),
			format.Amount(agg.Total*2)),
	})

	return nil
}

// Sync is one reconciliation pass. Exposed so tests can drive it directly.
func (s *Session) Sync(ctx context.Context) {
	s.reconcileRemoved(ctx)
	s.reconcileBalance(ctx)
	s.reconcilePosition(ctx)
}

// reconcileBalance adopts the authoritative stored balance whenever it
// diverges from the cache, so an admin add/reset/bonus is never clobbered
// by stale session state.
func (s *Session) reconcileBalance(ctx context.Context) {
	authoritative := s.players.Balance(ctx, s.playerID)

	s.mu.Lock()
	diverged := authoritative != s.cachedBalance
	old := s.cachedBalance
	s.cachedBalance = authoritative
	s.mu.Unlock()

	if !diverged {
		return
	}

	s.log.Info("balance reconciled",
		sl.String("player_id", s.playerID),
		sl.Int("cached", old),
		sl.Int("authoritative", authoritative))

	s.notify(Notice{
		Kind:  NoticeBalance,
		Title: "Balance updated",
		Body:  fmt.Sprintf("Your balance is now %s", format.Amount(authoritative)),
	})
}

// reconcilePosition resyncs the open position against the shared wager
// list: admin reassignment is adopted with a one-time notification, and a
// position that disappeared because the round settled flows through the
// transient Settled state back to Idle with a win/lose notice.
func (s *Session) reconcilePosition(ctx context.Context) {
	s.mu.Lock()
	state := s.state
	placedServer := s.placedServer
	placedSeri := s.placedSeri
	activeCategory := s.activeCategory
	s.mu.Unlock()

	if state != Pending {
		return
	}

	pending := s.wagers.PendingByPlayer(ctx, s.playerID, placedServer, placedSeri)

	if len(pending) > 0 {
		aggs := model.Aggregate(pending)
		agg := aggs[0]

		if agg.AdminReassigned && agg.Key.Category != activeCategory {
			s.mu.Lock()
			s.activeCategory = agg.Key.Category
			s.activeTotal = agg.Total
			s.mu.Unlock()

			dedupeKey := "reassign_" + agg.Key.String()
			if _, already := s.seen.Get(dedupeKey); !already {
				s.seen.Set(dedupeKey, true, gocache.DefaultExpiration)

				s.notify(Notice{
					Kind:  NoticeReassigned,
					Title: "Bet updated",
					Body: fmt.Sprintf("Your bet was moved to %s (%s)",
						agg.Key.Category, format.Amount(agg.Total)),
				})
			}
		}

		return
	}

	// Position gone: settled by the timer process, or cancelled by admin.
	entries := s.history.Bets(ctx, s.playerID)

	s.mu.Lock()
	settled := len(entries) > s.historySeen
	s.historySeen = len(entries)
	s.state = Idle
	s.activeCategory = ""
	s.activeTotal = 0
	s.mu.Unlock()

	if !settled {
		s.notify(Notice{
			Kind:  NoticeInfo,
			Title: "Bet cleared",
			Body:  "Your pending bet was removed",
		})

		return
	}

	last := entries[len(entries)-1]
	if last.Won {
		s.notify(Notice{
			Kind:  NoticeWin,
			Title: "MENANG!",
			Body: fmt.Sprintf("Bet %s (%s) won on result %d! You receive %s (x2)",
				last.Category, format.Amount(last.Amount), last.Result,
				format.Amount(last.Amount*2)),
		})
	} else {
		s.notify(Notice{
			Kind:  NoticeLose,
			Title: "KALAH",
			Body: fmt.Sprintf("Bet %s lost. Result: %d",
				last.Category, last.Result),
		})
	}
}

// reconcileRemoved surfaces admin deletion as a one-time forced logout.
func (s *Session) reconcileRemoved(ctx context.Context) {
	if _, ok := s.players.Get(ctx, s.playerID); ok {
		return
	}

	if _, already := s.seen.Get("removed"); already {
		return
	}
	s.seen.Set("removed", true, gocache.NoExpiration)

	s.notify(Notice{
		Kind:  NoticeRemoved,
		Title: "Account removed",
		Body:  "Your account was removed by the administrator",
	})
}

func (s *Session) reject(err error) {
	kind := NoticeValidation
	title := "Invalid bet"

	if errs.KindOf(err) == errs.Blocked {
		kind = NoticeBlocked
		title = "Account blocked"
	}

	s.notify(Notice{
		Kind:  kind,
		Title: title,
		Body:  errs.MessageOf(err),
	})
}

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.log.Warn("notice dropped, feed full",
			sl.String("player_id", s.playerID), sl.String("kind", string(n.Kind)))
	}

	err := s.events.Publish(event.Message{
		Channel: event.ChannelNotices,
		Event:   event.EventNotice,
		Data: map[string]any{
			"player_id": s.playerID,
			"kind":      string(n.Kind),
			"title":     n.Title,
			"body":      n.Body,
		},
	})
	if err != nil {
		s.log.Error("failed to publish notice", sl.Err(err))
	}
}
