package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

// liveWagersCap keeps the shared activity list from growing without bound;
// only the newest increments are retained, matching the dashboards.
const liveWagersCap = 100

// WagerRepository owns the shared live-wager list: every pending increment
// of every player, in placement order.
type WagerRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewWagerRepository(st store.Store, log *slog.Logger) *WagerRepository {
	return &WagerRepository{store: st, log: log}
}

func (repo *WagerRepository) List(ctx context.Context) []model.WagerIncrement {
	const op = "repository.wager.List"

	raw, err := repo.store.Get(ctx, store.LiveWagersKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read live wagers", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var increments []model.WagerIncrement
	if err = json.Unmarshal(raw, &increments); err != nil {
		repo.log.Error("corrupt live wager list, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return increments
}

func (repo *WagerRepository) save(ctx context.Context, increments []model.WagerIncrement) error {
	const op = "repository.wager.save"

	if len(increments) > liveWagersCap {
		increments = increments[len(increments)-liveWagersCap:]
	}

	raw, err := json.Marshal(increments)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.LiveWagersKey, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *WagerRepository) Append(ctx context.Context, inc model.WagerIncrement) error {
	const op = "repository.wager.Append"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	increments := append(repo.List(ctx), inc)

	if err := repo.save(ctx, increments); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PendingByRound returns all pending increments of one (server, seri).
func (repo *WagerRepository) PendingByRound(ctx context.Context, server model.ServerID, seri int64) []model.WagerIncrement {
	var out []model.WagerIncrement

	for _, inc := range repo.List(ctx) {
		if inc.Status == model.WagerPending && inc.Server == server && inc.Seri == seri {
			out = append(out, inc)
		}
	}

	return out
}

// PendingByPlayer returns the player's pending increments on one round.
func (repo *WagerRepository) PendingByPlayer(ctx context.Context, playerID string, server model.ServerID, seri int64) []model.WagerIncrement {
	var out []model.WagerIncrement

	for _, inc := range repo.PendingByRound(ctx, server, seri) {
		if inc.PlayerID == playerID {
			out = append(out, inc)
		}
	}

	return out
}

// Reassign moves every pending increment sharing the aggregation key to a
// new category, flagging them as admin controlled. Settled increments are
// untouched. Returns the number of increments re-keyed.
func (repo *WagerRepository) Reassign(ctx context.Context, key model.WagerKey, newCategory model.BetCategory) (int, error) {
	const op = "repository.wager.Reassign"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	increments := repo.List(ctx)

	changed := 0
	for i, inc := range increments {
		if inc.Status != model.WagerPending || inc.Key() != key {
			continue
		}

		increments[i].Category = newCategory
		increments[i].AdminReassigned = true
		changed++
	}

	if changed == 0 {
		return 0, nil
	}

	if err := repo.save(ctx, increments); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return changed, nil
}

// Remove drops one increment by id. Returns false if no such increment.
func (repo *WagerRepository) Remove(ctx context.Context, id string) (bool, error) {
	const op = "repository.wager.Remove"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	increments := repo.List(ctx)

	kept := increments[:0]
	removed := false
	for _, inc := range increments {
		if inc.ID == id {
			removed = true

			continue
		}

		kept = append(kept, inc)
	}

	if !removed {
		return false, nil
	}

	if err := repo.save(ctx, kept); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

// RemoveRound drops every pending increment of a finished (server, seri)
// after settlement.
func (repo *WagerRepository) RemoveRound(ctx context.Context, server model.ServerID, seri int64) error {
	const op = "repository.wager.RemoveRound"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	increments := repo.List(ctx)

	kept := increments[:0]
	for _, inc := range increments {
		if inc.Status == model.WagerPending && inc.Server == server && inc.Seri == seri {
			continue
		}

		kept = append(kept, inc)
	}

	if err := repo.save(ctx, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemovePlayer drops all increments of one player, used on player deletion.
func (repo *WagerRepository) RemovePlayer(ctx context.Context, playerID string) error {
	const op = "repository.wager.RemovePlayer"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	increments := repo.List(ctx)

	kept := increments[:0]
	for _, inc := range increments {
		if inc.PlayerID == playerID {
			continue
		}

		kept = append(kept, inc)
	}

	if err := repo.save(ctx, kept); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *WagerRepository) Watch() <-chan struct{} {
	return repo.store.Watch(store.LiveWagersKey)
}
