package repository

import (
	"context"
	"io"
	"testing"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoundRepository_GetRoundFallback(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())

	round := repo.GetRound(context.Background(), model.Server1)

	if round.IsActive {
		t.Error("missing round must come back inactive")
	}
	if round.Server != model.Server1 {
		t.Errorf("unexpected server, want: %s, got: %s", model.Server1, round.Server)
	}
}

func TestRoundRepository_GetRoundCorrupt(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	repo := NewRoundRepository(st, newTestLogger())
	ctx := context.Background()

	if err := st.Set(ctx, store.RoundKey(model.Server2), []byte("{not json")); err != nil {
		t.Fatalf("seed corrupt state: %v", err)
	}

	round := repo.GetRound(ctx, model.Server2)

	if round.IsActive {
		t.Error("corrupt round must fall back to inactive")
	}
}

func TestRoundRepository_SaveAndGet(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())
	ctx := context.Background()

	err := repo.SaveRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       2271,
		TimeLeft:   42,
		IsActive:   true,
		NextResult: 7,
	})
	if err != nil {
		t.Fatalf("save round: %v", err)
	}

	got := repo.GetRound(ctx, model.Server1)

	if got.Seri != 2271 || got.TimeLeft != 42 || !got.IsActive || got.NextResult != 7 {
		t.Errorf("unexpected round after roundtrip: %+v", got)
	}
	if got.UpdatedAt == 0 {
		t.Error("SaveRound must stamp UpdatedAt")
	}
}

func TestRoundRepository_SyncRoundKeepsOverride(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())
	ctx := context.Background()

	err := repo.SaveRound(ctx, model.Round{
		Server:         model.Server1,
		Seri:           100,
		TimeLeft:       30,
		IsActive:       true,
		NextResult:     9,
		OverrideActive: true,
		OverrideSetAt:  5000,
	})
	if err != nil {
		t.Fatalf("seed override round: %v", err)
	}

	// A periodic timer write carries no override and must not clobber it.
	merged, err := repo.SyncRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       100,
		TimeLeft:   29,
		IsActive:   true,
		NextResult: 3,
	})
	if err != nil {
		t.Fatalf("sync round: %v", err)
	}

	if merged.NextResult != 9 {
		t.Errorf("override result lost on sync, want: 9, got: %d", merged.NextResult)
	}
	if !merged.OverrideActive {
		t.Error("override flag lost on sync")
	}
	if merged.TimeLeft != 29 {
		t.Errorf("countdown must still advance, want: 29, got: %d", merged.TimeLeft)
	}

	stored := repo.GetRound(ctx, model.Server1)
	if stored.NextResult != 9 || !stored.OverrideActive {
		t.Errorf("stored round lost override: %+v", stored)
	}
}

func TestRoundRepository_SyncRoundNewerOverrideWins(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())
	ctx := context.Background()

	err := repo.SaveRound(ctx, model.Round{
		Server:         model.Server2,
		Seri:           500,
		IsActive:       true,
		NextResult:     2,
		OverrideActive: true,
		OverrideSetAt:  1000,
	})
	if err != nil {
		t.Fatalf("seed override round: %v", err)
	}

	merged, err := repo.SyncRound(ctx, model.Round{
		Server:         model.Server2,
		Seri:           500,
		IsActive:       true,
		NextResult:     8,
		OverrideActive: true,
		OverrideSetAt:  2000,
	})
	if err != nil {
		t.Fatalf("sync round: %v", err)
	}

	if merged.NextResult != 8 {
		t.Errorf("newer override must win, want: 8, got: %d", merged.NextResult)
	}
	if merged.OverrideSetAt != 2000 {
		t.Errorf("unexpected override timestamp, want: 2000, got: %d", merged.OverrideSetAt)
	}
}

func TestRoundRepository_SettledMark(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())
	ctx := context.Background()

	if got := repo.LastSettled(ctx, model.Server1); got != 0 {
		t.Errorf("fresh server must be unsettled, got: %d", got)
	}

	if err := repo.MarkSettled(ctx, model.Server1, 123); err != nil {
		t.Fatalf("mark settled: %v", err)
	}

	if got := repo.LastSettled(ctx, model.Server1); got != 123 {
		t.Errorf("unexpected last settled seri, want: 123, got: %d", got)
	}
}

func TestRoundRepository_Results(t *testing.T) {
	t.Parallel()

	repo := NewRoundRepository(store.NewMemory(), newTestLogger())
	ctx := context.Background()

	for i, result := range []int{4, 7, 0} {
		err := repo.AppendResult(ctx, model.ResultEntry{
			Seri:   int64(100 + i),
			Result: result,
			Server: model.Server1,
		})
		if err != nil {
			t.Fatalf("append result: %v", err)
		}
	}

	entries := repo.Results(ctx, model.Server1)
	if len(entries) != 3 {
		t.Fatalf("unexpected result count, want: 3, got: %d", len(entries))
	}
	if entries[2].Result != 0 || entries[2].Seri != 102 {
		t.Errorf("unexpected last entry: %+v", entries[2])
	}

	if other := repo.Results(ctx, model.Server2); other != nil {
		t.Errorf("server2 feed must be empty, got: %v", other)
	}
}
