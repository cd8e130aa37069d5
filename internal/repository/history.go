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

// HistoryRepository owns the append-only per-player records: settled bet
// history and balance transactions.
type HistoryRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewHistoryRepository(st store.Store, log *slog.Logger) *HistoryRepository {
	return &HistoryRepository{store: st, log: log}
}

func (repo *HistoryRepository) AppendBet(ctx context.Context, playerID string, entry model.BetHistoryEntry) error {
	const op = "repository.history.AppendBet"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	entries := repo.Bets(ctx, playerID)
	entries = append(entries, entry)

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.BetHistoryKey(playerID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *HistoryRepository) Bets(ctx context.Context, playerID string) []model.BetHistoryEntry {
	const op = "repository.history.Bets"

	raw, err := repo.store.Get(ctx, store.BetHistoryKey(playerID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read bet history", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var entries []model.BetHistoryEntry
	if err = json.Unmarshal(raw, &entries); err != nil {
		repo.log.Error("corrupt bet history, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return entries
}

func (repo *HistoryRepository) AppendTransaction(ctx context.Context, txn model.BalanceTransaction) error {
	const op = "repository.history.AppendTransaction"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	txns := repo.Transactions(ctx, txn.PlayerID)
	txns = append(txns, txn)

	raw, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = repo.store.Set(ctx, store.TransactionsKey(txn.PlayerID), raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *HistoryRepository) Transactions(ctx context.Context, playerID string) []model.BalanceTransaction {
	const op = "repository.history.Transactions"

	raw, err := repo.store.Get(ctx, store.TransactionsKey(playerID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read balance transactions", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var txns []model.BalanceTransaction
	if err = json.Unmarshal(raw, &txns); err != nil {
		repo.log.Error("corrupt transaction log, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return txns
}
