package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

// PlayerRepository owns player records, balances and the block-flag map.
type PlayerRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewPlayerRepository(st store.Store, log *slog.Logger) *PlayerRepository {
	return &PlayerRepository{store: st, log: log}
}

func (repo *PlayerRepository) Save(ctx context.Context, player model.Player) error {
	const op = "repository.player.Save"

	raw, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.PlayerKey(player.ID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.addToIndex(ctx, player.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PlayerRepository) Get(ctx context.Context, playerID string) (model.Player, bool) {
	const op = "repository.player.Get"

	raw, err := repo.store.Get(ctx, store.PlayerKey(playerID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read player", sl.String("op", op), sl.Err(err))
		}

		return model.Player{}, false
	}

	var player model.Player
	if err = json.Unmarshal(raw, &player); err != nil {
		repo.log.Error("corrupt player record", sl.String("op", op), sl.Err(err))

		return model.Player{}, false
	}

	return player, true
}

// Delete removes the player record and everything keyed by the id: balance,
// history, chat, the index entry and the block flag.
func (repo *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	const op = "repository.player.Delete"

	if err := repo.store.Delete(ctx, store.PlayerKey(playerID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := repo.store.Delete(ctx, store.BalanceKey(playerID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := repo.store.Delete(ctx, store.BetHistoryKey(playerID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := repo.store.Delete(ctx, store.ChatKey(playerID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := repo.removeFromIndex(ctx, playerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := repo.purgeBlock(ctx, playerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PlayerRepository) addToIndex(ctx context.Context, playerID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	ids := repo.IDs(ctx)
	for _, id := range ids {
		if id == playerID {
			return nil
		}
	}

	ids = append(ids, playerID)
	sort.Strings(ids)

	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return repo.store.Set(ctx, store.PlayersIndexKey, raw)
}

func (repo *PlayerRepository) removeFromIndex(ctx context.Context, playerID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	kept := make([]string, 0)
	for _, id := range repo.IDs(ctx) {
		if id != playerID {
			kept = append(kept, id)
		}
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return err
	}

	return repo.store.Set(ctx, store.PlayersIndexKey, raw)
}

func (repo *PlayerRepository) purgeBlock(ctx context.Context, playerID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	raw, err := repo.store.Get(ctx, store.BlocksKey)
	if err != nil {
		return nil
	}

	blocks := make(map[string]bool)
	if err = json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}

	delete(blocks, playerID)

	raw, err = json.Marshal(blocks)
	if err != nil {
		return err
	}

	return repo.store.Set(ctx, store.BlocksKey, raw)
}

func (repo *PlayerRepository) IDs(ctx context.Context) []string {
	const op = "repository.player.IDs"

	raw, err := repo.store.Get(ctx, store.PlayersIndexKey)
	if err != nil {
		return nil
	}

	var ids []string
	if err = json.Unmarshal(raw, &ids); err != nil {
		repo.log.Error("corrupt player index, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return ids
}

// Balance reads a player's balance. Absent or corrupt values read as 0.
func (repo *PlayerRepository) Balance(ctx context.Context, playerID string) int {
	const op = "repository.player.Balance"

	raw, err := repo.store.Get(ctx, store.BalanceKey(playerID))
	if err != nil {
		return 0
	}

	balance, err := strconv.Atoi(string(raw))
	if err != nil {
		repo.log.Error("corrupt balance, treating as zero",
			sl.String("op", op), sl.String("player_id", playerID), sl.Err(err))

		return 0
	}

	return balance
}

// SetBalance overwrites a player's balance. Negative values are clamped to
// zero; the balance is a non-negative integer by contract.
func (repo *PlayerRepository) SetBalance(ctx context.Context, playerID string, balance int) error {
	const op = "repository.player.SetBalance"

	if balance < 0 {
		balance = 0
	}

	if err := repo.store.Set(ctx, store.BalanceKey(playerID), []byte(strconv.Itoa(balance))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *PlayerRepository) WatchBalance(playerID string) <-chan struct{} {
	return repo.store.Watch(store.BalanceKey(playerID))
}

// Blocked reads the per-player block flag. Missing entries mean not blocked.
func (repo *PlayerRepository) Blocked(ctx context.Context, playerID string) bool {
	const op = "repository.player.Blocked"

	raw, err := repo.store.Get(ctx, store.BlocksKey)
	if err != nil {
		return false
	}

	var blocks map[string]bool
	if err = json.Unmarshal(raw, &blocks); err != nil {
		repo.log.Error("corrupt block map, treating as unblocked",
			sl.String("op", op), sl.Err(err))

		return false
	}

	return blocks[playerID]
}

func (repo *PlayerRepository) SetBlocked(ctx context.Context, playerID string, blocked bool) error {
	const op = "repository.player.SetBlocked"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	blocks := make(map[string]bool)

	raw, err := repo.store.Get(ctx, store.BlocksKey)
	if err == nil {
		if err = json.Unmarshal(raw, &blocks); err != nil {
			blocks = make(map[string]bool)
		}
	}

	blocks[playerID] = blocked

	raw, err = json.Marshal(blocks)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.BlocksKey, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
