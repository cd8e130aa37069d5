package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

// RoundRepository owns the per-server round record and result-history feed.
type RoundRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewRoundRepository(st store.Store, log *slog.Logger) *RoundRepository {
	return &RoundRepository{store: st, log: log}
}

// GetRound reads the live round record. Absent or unparseable state yields
// an inactive zero round, never an error the caller has to handle.
func (repo *RoundRepository) GetRound(ctx context.Context, server model.ServerID) model.Round {
	const op = "repository.round.GetRound"

	fallback := model.Round{Server: server, IsActive: false, NextResult: 0}

	raw, err := repo.store.Get(ctx, store.RoundKey(server))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read round state", sl.String("op", op), sl.Err(err))
		}

		return fallback
	}

	var round model.Round
	if err = json.Unmarshal(raw, &round); err != nil {
		repo.log.Error("corrupt round state, falling back to inactive",
			sl.String("op", op), sl.Err(err))

		return fallback
	}

	round.Server = server

	return round
}

// SaveRound overwrites the round record, stamping the logical timestamp.
// Bypasses the override precedence rule; the timer must use SyncRound.
func (repo *RoundRepository) SaveRound(ctx context.Context, round model.Round) error {
	const op = "repository.round.SaveRound"

	round.UpdatedAt = time.Now().UnixMilli()

	raw, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.RoundKey(round.Server), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SyncRound writes a periodic (non-override) round update, applying the
// precedence rule: while an administrator override is active on the stored
// record, the sync must not clobber the chosen result. The merged round that
// was actually written is returned so the writer can adopt it.
func (repo *RoundRepository) SyncRound(ctx context.Context, round model.Round) (model.Round, error) {
	const op = "repository.round.SyncRound"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored := repo.GetRound(ctx, round.Server)

	if stored.OverrideActive && stored.OverrideSetAt >= round.OverrideSetAt {
		round.NextResult = stored.NextResult
		round.OverrideActive = true
		round.OverrideSetAt = stored.OverrideSetAt
	}

	if err := repo.SaveRound(ctx, round); err != nil {
		return round, fmt.Errorf("%s: %w", op, err)
	}

	return round, nil
}

// Watch exposes the observer boundary for the round record.
func (repo *RoundRepository) Watch(server model.ServerID) <-chan struct{} {
	return repo.store.Watch(store.RoundKey(server))
}

func (repo *RoundRepository) AppendResult(ctx context.Context, entry model.ResultEntry) error {
	const op = "repository.round.AppendResult"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	entries := repo.Results(ctx, entry.Server)
	entries = append(entries, entry)

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.ResultHistoryKey(entry.Server), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *RoundRepository) Results(ctx context.Context, server model.ServerID) []model.ResultEntry {
	const op = "repository.round.Results"

	raw, err := repo.store.Get(ctx, store.ResultHistoryKey(server))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read result history", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var entries []model.ResultEntry
	if err = json.Unmarshal(raw, &entries); err != nil {
		repo.log.Error("corrupt result history, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return entries
}

// MarkSettled records the last settled seri of a server so redundant
// settlement invocations can be skipped.
func (repo *RoundRepository) MarkSettled(ctx context.Context, server model.ServerID, seri int64) error {
	const op = "repository.round.MarkSettled"

	raw, err := json.Marshal(seri)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.SettledMarkKey(server), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *RoundRepository) LastSettled(ctx context.Context, server model.ServerID) int64 {
	const op = "repository.round.LastSettled"

	raw, err := repo.store.Get(ctx, store.SettledMarkKey(server))
	if err != nil {
		return 0
	}

	var seri int64
	if err = json.Unmarshal(raw, &seri); err != nil {
		repo.log.Error("corrupt settled mark, treating as unsettled",
			sl.String("op", op), sl.Err(err))

		return 0
	}

	return seri
}
