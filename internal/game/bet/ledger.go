package bet

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Module tag written into balance transactions originating from bets.
const Module = "seno"

// Ledger records pending wagers. Increments on the same aggregation key
// merge into one position; a player holds open positions in at most one
// category per (server, round).
type Ledger struct {
	wagers  *repository.WagerRepository
	players *repository.PlayerRepository
	balance balance.Interface
	events  event.Publisher
	log     *slog.Logger
	mu      sync.Mutex
}

func NewLedger(
	wagers *repository.WagerRepository,
	players *repository.PlayerRepository,
	bal balance.Interface,
	events event.Publisher,
	log *slog.Logger,
) *Ledger {
	return &Ledger{
		wagers:  wagers,
		players: players,
		balance: bal,
		events:  events,
		log:     log,
	}
}

// Place validates and records one wager increment, debiting the amount
// immediately. Returns the aggregated position after the increment.
func (l *Ledger) Place(
	ctx context.Context,
	playerID string,
	cat model.BetCategory,
	amount int,
	server model.ServerID,
	seri int64,
) (model.AggregatedWager, error) {
	const op = "game.bet.Ledger.Place"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.players.Blocked(ctx, playerID) {
		return model.AggregatedWager{}, errs.Blockedf(
			"account is blocked; contact customer service")
	}

	if !cat.Valid() {
		return model.AggregatedWager{}, errs.Validationf("unknown bet category %q", cat)
	}
	if !server.Valid() {
		return model.AggregatedWager{}, errs.Validationf("unknown server %q", server)
	}
	if amount <= 0 {
		return model.AggregatedWager{}, errs.Validationf("bet amount must be positive")
	}

	if bal := l.players.Balance(ctx, playerID); amount > bal {
		return model.AggregatedWager{}, errs.Validationf(
			"insufficient balance: have %d, need %d", bal, amount)
	}

	for _, inc := range l.wagers.PendingByPlayer(ctx, playerID, server, seri) {
		if inc.Category != cat {
			return model.AggregatedWager{}, errs.Validationf(
				"already betting on %s this round; cancel it before choosing another category",
				inc.Category)
		}
	}

	// Debit before recording. A failed record after a successful debit is
	// the accepted consistency gap of the best-effort store.
	if err := l.balance.Outcome(ctx, playerID, amount, Module); err != nil {
		return model.AggregatedWager{}, err
	}

	name := ""
	if player, ok := l.players.Get(ctx, playerID); ok {
		name = player.Name
	}

	inc := model.WagerIncrement{
		ID:         "bet_" + uuid.New().String(),
		PlayerID:   playerID,
		PlayerName: name,
		Category:   cat,
		Amount:     amount,
		Server:     server,
		Seri:       seri,
		PlacedAt:   time.Now(),
		Status:     model.WagerPending,
	}

	if err := l.wagers.Append(ctx, inc); err != nil {
		l.log.Error("failed to record wager increment", sl.String("op", op), sl.Err(err))

		return model.AggregatedWager{}, fmt.Errorf("%s: %w", op, err)
	}

	l.publishPlaced(inc)

	agg := l.aggregateFor(ctx, inc.Key())

	l.log.Info("bet placed",
		sl.String("player_id", playerID),
		sl.String("category", string(cat)),
		sl.Int("amount", amount),
		sl.Int("total", agg.Total),
		sl.String("server", string(server)),
		sl.Int64("seri", seri))

	return agg, nil
}

// Reassign moves every pending increment of an aggregation key to a new
// category. Admin only; settled wagers are untouched.
func (l *Ledger) Reassign(ctx context.Context, key model.WagerKey, newCategory model.BetCategory) (int, error) {
	const op = "game.bet.Ledger.Reassign"

	if !newCategory.Valid() {
		return 0, errs.Validationf("unknown bet category %q", newCategory)
	}

	changed, err := l.wagers.Reassign(ctx, key, newCategory)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if changed > 0 {
		l.log.Info("bet category reassigned",
			sl.String("key", key.String()),
			sl.String("new_category", string(newCategory)),
			sl.Int("increments", changed))
	}

	return changed, nil
}

// Cancel removes one pending increment without settling it and without
// refunding the debited balance. House rule: a cancelled bet forfeits its
// stake.
func (l *Ledger) Cancel(ctx context.Context, wagerID string) error {
	const op = "game.bet.Ledger.Cancel"

	removed, err := l.wagers.Remove(ctx, wagerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !removed {
		return errs.Validationf("wager %s not found", wagerID)
	}

	l.log.Info("wager cancelled without refund", sl.String("wager_id", wagerID))

	return nil
}

// PendingAggregates returns every open position across all players, for the
// admin live view.
func (l *Ledger) PendingAggregates(ctx context.Context) []model.AggregatedWager {
	return model.Aggregate(l.wagers.List(ctx))
}

func (l *Ledger) aggregateFor(ctx context.Context, key model.WagerKey) model.AggregatedWager {
	for _, agg := range model.Aggregate(l.wagers.List(ctx)) {
		if agg.Key == key {
			return agg
		}
	}

	return model.AggregatedWager{Key: key}
}

func (l *Ledger) publishPlaced(inc model.WagerIncrement) {
	err := l.events.Publish(event.Message{
		Channel: event.ChannelBets,
		Event:   event.EventBetPlaced,
		Data: map[string]any{
			"id":        inc.ID,
			"player_id": inc.PlayerID,
			"category":  string(inc.Category),
			"amount":    strconv.Itoa(inc.Amount),
			"server":    string(inc.Server),
			"seri":      strconv.FormatInt(inc.Seri, 10),
		},
	})
	if err != nil {
		l.log.Error("failed to publish bet event", sl.Err(err))
	}
}
