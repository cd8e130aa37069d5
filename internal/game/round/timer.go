package round

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/category"
	"github.com/putridahliana91-coder/senoplan/internal/game/fair"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Settler resolves all pending wagers of a finished round.
type Settler interface {
	Settle(ctx context.Context, server model.ServerID, seri int64, result int) error
}

// Timer drives one server's perpetual round cycle: a one-second countdown
// that, on expiry, freezes the pending result, publishes it, advances the
// seri number and dispatches settlement. Two instances run independently,
// one per server.
type Timer struct {
	server      model.ServerID
	rounds      *repository.RoundRepository
	drawer      *fair.DigitDrawer
	settler     Settler
	queue       job.Queue
	events      event.Publisher
	log         *slog.Logger
	duration    int
	initialSeri int64
}

func NewTimer(
	server model.ServerID,
	rounds *repository.RoundRepository,
	drawer *fair.DigitDrawer,
	settler Settler,
	queue job.Queue,
	events event.Publisher,
	log *slog.Logger,
	duration int,
	initialSeri int64,
) *Timer {
	if duration <= 0 {
		duration = model.RoundSeconds
	}
	if initialSeri < 1 || initialSeri > model.MaxSeri {
		initialSeri = 1
	}

	return &Timer{
		server:      server,
		rounds:      rounds,
		drawer:      drawer,
		settler:     settler,
		queue:       queue,
		events:      events,
		log:         log,
		duration:    duration,
		initialSeri: initialSeri,
	}
}

// Run ticks the countdown until the context ends. Rounds are perpetual;
// there is no pause between them.
func (t *Timer) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick advances the countdown by one second. Exposed so tests can drive the
// cycle without waiting on a real clock.
func (t *Timer) Tick(ctx context.Context) {
	const op = "game.round.Timer.Tick"

	current := t.rounds.GetRound(ctx, t.server)

	if !current.IsActive {
		t.bootstrap(ctx, current)

		return
	}

	current.TimeLeft--

	if current.TimeLeft > 0 {
		if _, err := t.rounds.SyncRound(ctx, current); err != nil {
			t.log.Error("failed to sync round state", sl.String("op", op), sl.Err(err))
		}

		t.publishSync(current)

		return
	}

	t.expire(ctx, current)
}

// bootstrap starts the first round of a server whose state is missing or
// was reported inactive (including the corrupt-state fallback).
func (t *Timer) bootstrap(ctx context.Context, current model.Round) {
	const op = "game.round.Timer.bootstrap"

	digit, proof := t.drawer.Draw()

	seri := current.Seri
	if seri < 1 {
		seri = t.initialSeri
	}

	fresh := model.Round{
		Server:     t.server,
		Seri:       seri,
		TimeLeft:   t.duration,
		IsActive:   true,
		NextResult: digit,
	}

	if _, err := t.rounds.SyncRound(ctx, fresh); err != nil {
		t.log.Error("failed to start round", sl.String("op", op), sl.Err(err))

		return
	}

	t.log.Info("round timer started",
		sl.String("server", string(t.server)),
		sl.Int64("seri", seri),
		sl.String("draw_hash", proof.Hash[:16]))
}

// expire finishes the current round: the stored nextResult is the outcome
// (an active override already lives in that field), the result goes to the
// history feed, the seri advances with wraparound, and settlement for the
// finished round is handed to the worker pool.
func (t *Timer) expire(ctx context.Context, current model.Round) {
	const op = "game.round.Timer.expire"

	// Re-read right before freezing so a last-second override still lands.
	latest := t.rounds.GetRound(ctx, t.server)
	if latest.OverrideActive {
		current.NextResult = latest.NextResult
		current.OverrideActive = true
		current.OverrideSetAt = latest.OverrideSetAt
	}

	result := current.NextResult
	finishedSeri := current.Seri

	if err := t.rounds.AppendResult(ctx, model.ResultEntry{
		Seri:      finishedSeri,
		Result:    result,
		Server:    t.server,
		Timestamp: time.Now(),
	}); err != nil {
		t.log.Error("failed to append result", sl.String("op", op), sl.Err(err))
	}

	t.announce(finishedSeri, result)

	current.Seri = model.NextSeri(finishedSeri)
	current.TimeLeft = t.duration

	if current.OverrideActive {
		// Administrator has not cleared the override; it keeps forcing the
		// next round too.
		t.log.Info("override carried into next round",
			sl.String("server", string(t.server)), sl.Int("result", current.NextResult))
	} else {
		digit, proof := t.drawer.Draw()
		current.NextResult = digit

		t.log.Info("next result drawn",
			sl.String("server", string(t.server)),
			sl.Int("result", digit),
			sl.String("draw_hash", proof.Hash[:16]))
	}

	if _, err := t.rounds.SyncRound(ctx, current); err != nil {
		t.log.Error("failed to save advanced round", sl.String("op", op), sl.Err(err))
	}

	t.queue.Dispatch(&SettleJob{
		Settler: t.settler,
		Server:  t.server,
		Seri:    finishedSeri,
		Result:  result,
		Log:     t.log,
	}, 0)
}

// publishSync pushes the countdown to the dashboards every tick, so clients
// show the same clock as the server without polling.
func (t *Timer) publishSync(r model.Round) {
	err := t.events.Publish(event.Message{
		Channel: event.ChannelRounds,
		Event:   event.EventRoundSync,
		Data: map[string]any{
			"server":    string(t.server),
			"seri":      strconv.FormatInt(r.Seri, 10),
			"time_left": strconv.Itoa(r.TimeLeft),
		},
	})
	if err != nil {
		t.log.Error("failed to publish round sync", sl.Err(err))
	}
}

func (t *Timer) announce(seri int64, result int) {
	err := t.events.Publish(event.Message{
		Channel: event.ChannelRounds,
		Event:   event.EventRoundResult,
		Data: map[string]any{
			"server":     string(t.server),
			"seri":       strconv.FormatInt(seri, 10),
			"result":     strconv.Itoa(result),
			"categories": strings.Join(category.Tags(result), " • "),
		},
	})
	if err != nil {
		t.log.Error("failed to announce result", sl.Err(err))
	}
}

// SettleJob runs one settlement on the worker pool.
type SettleJob struct {
	Settler Settler
	Server  model.ServerID
	Seri    int64
	Result  int
	Log     *slog.Logger
}

func (j *SettleJob) Execute() {
	if err := j.Settler.Settle(context.Background(), j.Server, j.Seri, j.Result); err != nil {
		j.Log.Error("settlement failed",
			sl.String("server", string(j.Server)),
			sl.Int64("seri", j.Seri),
			sl.Err(fmt.Errorf("settle: %w", err)))
	}
}
