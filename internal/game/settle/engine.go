package settle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/game/category"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Engine resolves all pending wagers of a finished round against its result:
// winners get the flat 2x credit, every aggregated position becomes one
// immutable history entry, and the round's pending set is cleared.
type Engine struct {
	wagers  *repository.WagerRepository
	rounds  *repository.RoundRepository
	history *repository.HistoryRepository
	balance balance.Interface
	events  event.Publisher
	log     *slog.Logger

	mu          sync.Mutex
	lastSettled map[model.ServerID]int64
}

func NewEngine(
	wagers *repository.WagerRepository,
	rounds *repository.RoundRepository,
	history *repository.HistoryRepository,
	bal balance.Interface,
	events event.Publisher,
	log *slog.Logger,
) *Engine {
	return &Engine{
		wagers:      wagers,
		rounds:      rounds,
		history:     history,
		balance:     bal,
		events:      events,
		log:         log,
		lastSettled: make(map[model.ServerID]int64),
	}
}

// Settle applies the round result exactly once per (server, seri). Redundant
// invocations, including from lagging pollers, are skipped via the in-memory
// guard plus the shared settled marker.
func (e *Engine) Settle(ctx context.Context, server model.ServerID, seri int64, result int) error {
	const op = "game.settle.Engine.Settle"

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastSettled[server] == seri || e.rounds.LastSettled(ctx, server) == seri {
		e.log.Debug("round already settled, skipping",
			sl.String("server", string(server)), sl.Int64("seri", seri))

		return nil
	}

	pending := e.wagers.PendingByRound(ctx, server, seri)
	positions := model.Aggregate(pending)

	for _, pos := range positions {
		won := category.Resolve(pos.Key.Category, result)

		if won {
			payout := pos.Total * category.Multiplier

			if err := e.balance.Income(ctx, pos.Key.PlayerID, payout, bet.Module); err != nil {
				e.log.Error("failed to credit winner",
					sl.String("op", op),
					sl.String("player_id", pos.Key.PlayerID),
					sl.Err(err))

				return fmt.Errorf("%s: %w", op, err)
			}
		}

		entry := model.BetHistoryEntry{
			Category:  pos.Key.Category,
			Amount:    pos.Total,
			Result:    result,
			Won:       won,
			Seri:      seri,
			Server:    server,
			Timestamp: time.Now(),
		}

		if err := e.history.AppendBet(ctx, pos.Key.PlayerID, entry); err != nil {
			e.log.Error("failed to append bet history",
				sl.String("op", op),
				sl.String("player_id", pos.Key.PlayerID),
				sl.Err(err))

			return fmt.Errorf("%s: %w", op, err)
		}

		e.publishSettled(pos, result, won)
	}

	if err := e.wagers.RemoveRound(ctx, server, seri); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := e.rounds.MarkSettled(ctx, server, seri); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	e.lastSettled[server] = seri

	e.log.Info("round settled",
		sl.String("server", string(server)),
		sl.Int64("seri", seri),
		sl.Int("result", result),
		sl.Int("positions", len(positions)))

	return nil
}

func (e *Engine) publishSettled(pos model.AggregatedWager, result int, won bool) {
	err := e.events.Publish(event.Message{
		Channel: event.ChannelBets,
		Event:   event.EventBetSettled,
		Data: map[string]any{
			"player_id": pos.Key.PlayerID,
			"category":  string(pos.Key.Category),
			"amount":    strconv.Itoa(pos.Total),
			"server":    string(pos.Key.Server),
			"seri":      strconv.FormatInt(pos.Key.Seri, 10),
			"result":    strconv.Itoa(result),
			"won":       strconv.FormatBool(won),
		},
	})
	if err != nil {
		e.log.Error("failed to publish settlement event", sl.Err(err))
	}
}
