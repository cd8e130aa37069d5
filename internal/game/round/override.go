package round

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/fair"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// OverrideChannel is the administrator's slot for forcing a server's pending
// result. A set override changes the outcome of the round about to end and
// stays in force until cleared; periodic timer writes yield to it via the
// SyncRound precedence rule.
type OverrideChannel struct {
	rounds *repository.RoundRepository
	drawer *fair.DigitDrawer
	events event.Publisher
	log    *slog.Logger
}

func NewOverrideChannel(
	rounds *repository.RoundRepository,
	drawer *fair.DigitDrawer,
	events event.Publisher,
	log *slog.Logger,
) *OverrideChannel {
	return &OverrideChannel{
		rounds: rounds,
		drawer: drawer,
		events: events,
		log:    log,
	}
}

// Set forces the pending result of a server, effective immediately.
func (o *OverrideChannel) Set(ctx context.Context, server model.ServerID, digit int) error {
	const op = "game.round.OverrideChannel.Set"

	if !server.Valid() {
		return errs.Validationf("unknown server %q", server)
	}
	if digit < 0 || digit > 9 {
		return errs.Validationf("override result must be a single digit, got %d", digit)
	}

	round := o.rounds.GetRound(ctx, server)

	round.NextResult = digit
	round.OverrideActive = true
	round.OverrideSetAt = time.Now().UnixMilli()

	if err := o.rounds.SaveRound(ctx, round); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	o.log.Info("override set",
		sl.String("server", string(server)), sl.Int("result", digit))

	o.publish(server, "override-set", digit)

	return nil
}

// Clear removes the override and immediately draws a fresh random digit so
// the pending round's outcome becomes unpredictable again.
func (o *OverrideChannel) Clear(ctx context.Context, server model.ServerID) error {
	const op = "game.round.OverrideChannel.Clear"

	if !server.Valid() {
		return errs.Validationf("unknown server %q", server)
	}

	round := o.rounds.GetRound(ctx, server)

	digit, proof := o.drawer.Draw()

	round.NextResult = digit
	round.OverrideActive = false
	round.OverrideSetAt = 0

	if err := o.rounds.SaveRound(ctx, round); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	o.log.Info("override cleared",
		sl.String("server", string(server)),
		sl.Int("redrawn", digit),
		sl.String("draw_hash", proof.Hash[:16]))

	o.publish(server, "override-cleared", digit)

	return nil
}

func (o *OverrideChannel) publish(server model.ServerID, name string, digit int) {
	err := o.events.Publish(event.Message{
		Channel: event.ChannelRounds,
		Event:   name,
		Data: map[string]any{
			"server": string(server),
			"result": strconv.Itoa(digit),
		},
	})
	if err != nil {
		o.log.Error("failed to publish override event", sl.Err(err))
	}
}
