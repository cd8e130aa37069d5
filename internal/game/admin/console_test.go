package admin

import (
	"context"
	"io"
	"testing"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/game/fair"
	"github.com/putridahliana91-coder/senoplan/internal/game/round"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

type fixture struct {
	console  *Console
	ledger   *bet.Ledger
	players  *repository.PlayerRepository
	wagers   *repository.WagerRepository
	withdraw *repository.WithdrawRepository
	chat     *repository.ChatRepository
	balance  *balance.Service
	queue    job.Queue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	players := repository.NewPlayerRepository(st, log)
	history := repository.NewHistoryRepository(st, log)
	wagers := repository.NewWagerRepository(st, log)
	rounds := repository.NewRoundRepository(st, log)
	withdraw := repository.NewWithdrawRepository(st, log)
	chat := repository.NewChatRepository(st, log)

	bal := balance.New(players, history, event.Nop{}, log)
	ledger := bet.NewLedger(wagers, players, bal, event.Nop{}, log)
	drawer := fair.NewDigitDrawer(log)
	override := round.NewOverrideChannel(rounds, drawer, event.Nop{}, log)
	queue := job.NewQueue(8)

	ctx := context.Background()
	if err := players.Save(ctx, model.Player{ID: "p1", Name: "Budi"}); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if err := players.SetBalance(ctx, "p1", 1000); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	return &fixture{
		console:  NewConsole(ledger, override, bal, players, wagers, withdraw, chat, queue, event.Nop{}, log),
		ledger:   ledger,
		players:  players,
		wagers:   wagers,
		withdraw: withdraw,
		chat:     chat,
		balance:  bal,
		queue:    queue,
	}
}

// runQueuedJob waits out the CS reply delay and executes the job inline.
func runQueuedJob(t *testing.T, queue job.Queue) {
	t.Helper()

	select {
	case j := <-queue:
		j.Execute()
	case <-time.After(ReplyDelay + 2*time.Second):
		t.Fatal("no job dispatched")
	}
}

func TestConsole_AddBalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.console.AddBalance(ctx, "p1", 500); err != nil {
		t.Fatalf("add balance: %v", err)
	}

	if got := f.players.Balance(ctx, "p1"); got != 1500 {
		t.Errorf("unexpected balance, want: 1500, got: %d", got)
	}

	runQueuedJob(t, f.queue)

	messages := f.chat.Messages(ctx, "p1")
	if len(messages) != 1 {
		t.Fatalf("deposit must leave a cs reply, got: %d messages", len(messages))
	}
	if messages[0].Sender != model.SenderAdmin {
		t.Errorf("cs reply must come from admin, got: %s", messages[0].Sender)
	}
}

func TestConsole_AddBalanceRejections(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.console.AddBalance(ctx, "p1", 0); errs.KindOf(err) != errs.Validation {
		t.Errorf("zero amount must be rejected, got: %v", err)
	}
	if err := f.console.AddBalance(ctx, "ghost", 100); errs.KindOf(err) != errs.Validation {
		t.Errorf("unknown player must be rejected, got: %v", err)
	}
}

func TestConsole_ResetBalance(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.console.ResetBalance(ctx, "p1"); err != nil {
		t.Fatalf("reset balance: %v", err)
	}

	if got := f.players.Balance(ctx, "p1"); got != 0 {
		t.Errorf("reset must zero the balance, got: %d", got)
	}
}

func TestConsole_ActivateBonus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.console.ActivateBonus(ctx, "p1", 250); err != nil {
		t.Fatalf("activate bonus: %v", err)
	}

	if got := f.players.Balance(ctx, "p1"); got != 1250 {
		t.Errorf("unexpected balance, want: 1250, got: %d", got)
	}

	runQueuedJob(t, f.queue)

	if messages := f.chat.Messages(ctx, "p1"); len(messages) != 1 {
		t.Errorf("bonus must leave a cs reply, got: %d messages", len(messages))
	}
}

func TestConsole_DeletePlayerCascades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Place(ctx, "p1", model.Besar, 100, model.Server1, 42); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := f.console.SetBlocked(ctx, "p1", true); err != nil {
		t.Fatalf("block: %v", err)
	}

	if err := f.console.DeletePlayer(ctx, "p1"); err != nil {
		t.Fatalf("delete player: %v", err)
	}

	if _, ok := f.players.Get(ctx, "p1"); ok {
		t.Error("player record must be gone")
	}
	if pending := f.wagers.List(ctx); len(pending) != 0 {
		t.Errorf("pending wagers must be removed, got: %d", len(pending))
	}
	for _, id := range f.players.IDs(ctx) {
		if id == "p1" {
			t.Error("deleted player must leave the index")
		}
	}
	if f.players.Blocked(ctx, "p1") {
		t.Error("deleted player must leave the block map")
	}
}

func TestConsole_ResolveWithdrawal(t *testing.T) {
	cases := []struct {
		name        string
		approve     bool
		wantBalance int
		wantStatus  model.WithdrawStatus
	}{
		{
			name:        "Approved",
			approve:     true,
			wantBalance: 700,
			wantStatus:  model.WithdrawApproved,
		},
		{
			name:        "RejectedRefunds",
			approve:     false,
			wantBalance: 1000,
			wantStatus:  model.WithdrawRejected,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()

			// Withdrawal requests debit up front.
			if err := f.balance.Outcome(ctx, "p1", 300, "withdraw"); err != nil {
				t.Fatalf("debit: %v", err)
			}
			err := f.withdraw.Append(ctx, model.WithdrawRequest{
				ID:       "wd-1",
				PlayerID: "p1",
				Amount:   300,
				Status:   model.WithdrawPending,
			})
			if err != nil {
				t.Fatalf("append request: %v", err)
			}

			if err = f.console.ResolveWithdrawal(ctx, "wd-1", tc.approve); err != nil {
				t.Fatalf("resolve: %v", err)
			}

			if got := f.players.Balance(ctx, "p1"); got != tc.wantBalance {
				t.Errorf("unexpected balance, want: %d, got: %d", tc.wantBalance, got)
			}

			requests := f.withdraw.List(ctx)
			if len(requests) != 1 || requests[0].Status != tc.wantStatus {
				t.Errorf("unexpected request state: %+v", requests)
			}
		})
	}
}

func TestConsole_ResolveWithdrawalOnlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.balance.Outcome(ctx, "p1", 400, "withdraw"); err != nil {
		t.Fatalf("debit: %v", err)
	}
	err := f.withdraw.Append(ctx, model.WithdrawRequest{
		ID:       "wd-1",
		PlayerID: "p1",
		Amount:   400,
		Status:   model.WithdrawPending,
	})
	if err != nil {
		t.Fatalf("append request: %v", err)
	}

	if err = f.console.ResolveWithdrawal(ctx, "wd-1", false); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if got := f.players.Balance(ctx, "p1"); got != 1000 {
		t.Fatalf("rejection must refund once, want: 1000, got: %d", got)
	}

	// A resolved request cannot be resolved again, so the refund cannot
	// double and a paid-out approval cannot be refunded afterwards.
	if err = f.console.ResolveWithdrawal(ctx, "wd-1", false); errs.KindOf(err) != errs.Validation {
		t.Fatalf("second resolve must be rejected, got: %v", err)
	}
	if err = f.console.ResolveWithdrawal(ctx, "wd-1", true); errs.KindOf(err) != errs.Validation {
		t.Fatalf("approving a rejected request must fail, got: %v", err)
	}

	if got := f.players.Balance(ctx, "p1"); got != 1000 {
		t.Errorf("balance must not move again, want: 1000, got: %d", got)
	}
	if requests := f.withdraw.List(ctx); requests[0].Status != model.WithdrawRejected {
		t.Errorf("status must stay rejected, got: %s", requests[0].Status)
	}
}

func TestConsole_SetBlocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.console.SetBlocked(ctx, "p1", true); err != nil {
		t.Fatalf("block: %v", err)
	}
	if !f.players.Blocked(ctx, "p1") {
		t.Error("player must be blocked")
	}

	if err := f.console.SetBlocked(ctx, "p1", false); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if f.players.Blocked(ctx, "p1") {
		t.Error("player must be unblocked")
	}
}
