package player

import (
	"context"
	"io"
	"testing"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, *repository.PlayerRepository) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	players := repository.NewPlayerRepository(st, log)
	history := repository.NewHistoryRepository(st, log)
	bal := balance.New(players, history, event.Nop{}, log)

	return NewRegistry(players, bal, 1000, log), players
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	registry, players := newTestRegistry(t)
	ctx := context.Background()

	p, err := registry.Register(ctx, "Budi", "budi@example.com")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if p.ID == "" || p.Name != "Budi" {
		t.Errorf("unexpected player: %+v", p)
	}
	if got := players.Balance(ctx, p.ID); got != 1000 {
		t.Errorf("starting balance must be credited, want: 1000, got: %d", got)
	}

	if got, err := registry.Get(ctx, p.ID); err != nil || got.Name != "Budi" {
		t.Errorf("get after register: %+v, %v", got, err)
	}
}

func TestRegistry_RegisterRejections(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	if _, err := registry.Register(ctx, "Budi", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Names are unique, case-insensitively.
	if _, err := registry.Register(ctx, "budi", ""); errs.KindOf(err) != errs.Validation {
		t.Errorf("duplicate name must be rejected, got: %v", err)
	}

	if _, err := registry.Register(ctx, "   ", ""); errs.KindOf(err) != errs.Validation {
		t.Errorf("blank name must be rejected, got: %v", err)
	}
}

func TestRegistry_FoldsBlockFlag(t *testing.T) {
	t.Parallel()

	registry, players := newTestRegistry(t)
	ctx := context.Background()

	p, err := registry.Register(ctx, "Budi", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err = players.SetBlocked(ctx, p.ID, true); err != nil {
		t.Fatalf("block: %v", err)
	}

	if got, err := registry.Get(ctx, p.ID); err != nil || !got.Blocked {
		t.Errorf("get must report the block flag: %+v, %v", got, err)
	}

	listed := registry.List(ctx)
	if len(listed) != 1 || !listed[0].Blocked {
		t.Errorf("list must report the block flag: %+v", listed)
	}
}

func TestRegistry_List(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"Budi", "Sari", "Agus"} {
		if _, err := registry.Register(ctx, name, ""); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	if got := registry.List(ctx); len(got) != 3 {
		t.Errorf("unexpected player count, want: 3, got: %d", len(got))
	}

	if _, err := registry.Get(ctx, "ghost"); errs.KindOf(err) != errs.Validation {
		t.Errorf("unknown player must be rejected, got: %v", err)
	}
}
