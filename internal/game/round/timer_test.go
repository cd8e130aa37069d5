package round

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/fair"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

type recordingSettler struct {
	mu    sync.Mutex
	calls []settleCall
}

type settleCall struct {
	server model.ServerID
	seri   int64
	result int
}

func (s *recordingSettler) Settle(_ context.Context, server model.ServerID, seri int64, result int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, settleCall{server: server, seri: seri, result: result})

	return nil
}

func (s *recordingSettler) snapshot() []settleCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]settleCall(nil), s.calls...)
}

type fixture struct {
	timer    *Timer
	rounds   *repository.RoundRepository
	queue    job.Queue
	settler  *recordingSettler
	override *OverrideChannel
}

func newFixture(t *testing.T, server model.ServerID, initialSeri int64) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	rounds := repository.NewRoundRepository(st, log)
	drawer := fair.NewDigitDrawer(log)
	settler := &recordingSettler{}
	queue := job.NewQueue(8)

	return &fixture{
		timer:    NewTimer(server, rounds, drawer, settler, queue, event.Nop{}, log, 60, initialSeri),
		rounds:   rounds,
		queue:    queue,
		settler:  settler,
		override: NewOverrideChannel(rounds, drawer, event.Nop{}, log),
	}
}

// drainJob waits for the dispatched settlement job and runs it inline.
func drainJob(t *testing.T, queue job.Queue) {
	t.Helper()

	select {
	case j := <-queue:
		j.Execute()
	case <-time.After(2 * time.Second):
		t.Fatal("no settlement job dispatched")
	}
}

func TestTimer_Bootstrap(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server1, 2271)
	ctx := context.Background()

	f.timer.Tick(ctx)

	round := f.rounds.GetRound(ctx, model.Server1)
	if !round.IsActive {
		t.Fatal("first tick must activate the round")
	}
	if round.Seri != 2271 {
		t.Errorf("unexpected seri, want: 2271, got: %d", round.Seri)
	}
	if round.TimeLeft != 60 {
		t.Errorf("unexpected countdown, want: 60, got: %d", round.TimeLeft)
	}
	if round.NextResult < 0 || round.NextResult > 9 {
		t.Errorf("pending result must be a digit, got: %d", round.NextResult)
	}
}

func TestTimer_TickDecrements(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server1, 100)
	ctx := context.Background()

	f.timer.Tick(ctx)
	f.timer.Tick(ctx)
	f.timer.Tick(ctx)

	round := f.rounds.GetRound(ctx, model.Server1)
	if round.TimeLeft != 58 {
		t.Errorf("two ticks after bootstrap, want: 58, got: %d", round.TimeLeft)
	}
	if round.Seri != 100 {
		t.Errorf("seri must not move mid-round, got: %d", round.Seri)
	}
}

func TestTimer_ExpireAdvancesAndSettles(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server1, 1)
	ctx := context.Background()

	err := f.rounds.SaveRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       500,
		TimeLeft:   1,
		IsActive:   true,
		NextResult: 4,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	f.timer.Tick(ctx)
	drainJob(t, f.queue)

	round := f.rounds.GetRound(ctx, model.Server1)
	if round.Seri != 501 {
		t.Errorf("seri must advance on expiry, want: 501, got: %d", round.Seri)
	}
	if round.TimeLeft != 60 {
		t.Errorf("countdown must reset, want: 60, got: %d", round.TimeLeft)
	}

	results := f.rounds.Results(ctx, model.Server1)
	if len(results) != 1 || results[0].Result != 4 || results[0].Seri != 500 {
		t.Errorf("unexpected result feed: %+v", results)
	}

	calls := f.settler.snapshot()
	if len(calls) != 1 {
		t.Fatalf("one settlement expected, got: %d", len(calls))
	}
	if calls[0].seri != 500 || calls[0].result != 4 {
		t.Errorf("settlement must target the finished round: %+v", calls[0])
	}
}

func TestTimer_SeriWrapsAtMax(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server2, 1)
	ctx := context.Background()

	err := f.rounds.SaveRound(ctx, model.Round{
		Server:     model.Server2,
		Seri:       model.MaxSeri,
		TimeLeft:   1,
		IsActive:   true,
		NextResult: 8,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	f.timer.Tick(ctx)
	drainJob(t, f.queue)

	round := f.rounds.GetRound(ctx, model.Server2)
	if round.Seri != 1 {
		t.Errorf("seri 9999 must wrap to 1, got: %d", round.Seri)
	}
}

func TestTimer_OverrideDecidesResult(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server2, 1)
	ctx := context.Background()

	err := f.rounds.SaveRound(ctx, model.Round{
		Server:     model.Server2,
		Seri:       300,
		TimeLeft:   2,
		IsActive:   true,
		NextResult: 1,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	if err = f.override.Set(ctx, model.Server2, 9); err != nil {
		t.Fatalf("set override: %v", err)
	}

	// Periodic tick must not clobber the override while counting down.
	f.timer.Tick(ctx)

	round := f.rounds.GetRound(ctx, model.Server2)
	if round.NextResult != 9 || !round.OverrideActive {
		t.Fatalf("override lost to periodic sync: %+v", round)
	}

	// Expiry freezes the overridden digit as the outcome.
	f.timer.Tick(ctx)
	drainJob(t, f.queue)

	results := f.rounds.Results(ctx, model.Server2)
	if len(results) != 1 || results[0].Result != 9 {
		t.Fatalf("override must decide the result: %+v", results)
	}

	// Until cleared the override keeps forcing the next round.
	next := f.rounds.GetRound(ctx, model.Server2)
	if next.NextResult != 9 || !next.OverrideActive {
		t.Errorf("override must persist into the next round: %+v", next)
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []event.Message
}

func (p *recordingPublisher) Publish(msg event.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.msgs = append(p.msgs, msg)

	return nil
}

func (p *recordingPublisher) snapshot() []event.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]event.Message(nil), p.msgs...)
}

func TestTimer_TickPublishesCountdownSync(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	rounds := repository.NewRoundRepository(st, log)
	events := &recordingPublisher{}
	timer := NewTimer(model.Server1, rounds, fair.NewDigitDrawer(log),
		&recordingSettler{}, job.NewQueue(8), events, log, 60, 1)
	ctx := context.Background()

	err := rounds.SaveRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       42,
		TimeLeft:   30,
		IsActive:   true,
		NextResult: 3,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	timer.Tick(ctx)

	var found *event.Message
	for _, msg := range events.snapshot() {
		if msg.Event == event.EventRoundSync {
			msg := msg
			found = &msg

			break
		}
	}

	if found == nil {
		t.Fatal("tick must publish a round sync event")
	}
	if found.Channel != event.ChannelRounds {
		t.Errorf("unexpected channel: %s", found.Channel)
	}
	if found.Data["time_left"] != "29" {
		t.Errorf("sync must carry the decremented countdown, got: %v", found.Data["time_left"])
	}
	if found.Data["seri"] != "42" {
		t.Errorf("sync must carry the running seri, got: %v", found.Data["seri"])
	}
}

func TestTimer_ClearOverrideResumesRandom(t *testing.T) {
	t.Parallel()

	f := newFixture(t, model.Server1, 1)
	ctx := context.Background()

	err := f.rounds.SaveRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       10,
		TimeLeft:   30,
		IsActive:   true,
		NextResult: 5,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	if err = f.override.Set(ctx, model.Server1, 2); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if err = f.override.Clear(ctx, model.Server1); err != nil {
		t.Fatalf("clear override: %v", err)
	}

	round := f.rounds.GetRound(ctx, model.Server1)
	if round.OverrideActive {
		t.Error("cleared override must not stay active")
	}
	if round.NextResult < 0 || round.NextResult > 9 {
		t.Errorf("cleared override must leave a drawn digit, got: %d", round.NextResult)
	}
}
