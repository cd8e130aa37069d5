package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

type WithdrawRepository struct {
	store store.Store
	log   *slog.Logger
	mu    sync.Mutex
}

func NewWithdrawRepository(st store.Store, log *slog.Logger) *WithdrawRepository {
	return &WithdrawRepository{store: st, log: log}
}

func (repo *WithdrawRepository) Append(ctx context.Context, req model.WithdrawRequest) error {
	const op = "repository.withdraw.Append"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	requests := append(repo.List(ctx), req)

	if err := repo.save(ctx, requests); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *WithdrawRepository) List(ctx context.Context) []model.WithdrawRequest {
	const op = "repository.withdraw.List"

	raw, err := repo.store.Get(ctx, store.WithdrawalsKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			repo.log.Error("failed to read withdrawals", sl.String("op", op), sl.Err(err))
		}

		return nil
	}

	var requests []model.WithdrawRequest
	if err = json.Unmarshal(raw, &requests); err != nil {
		repo.log.Error("corrupt withdrawal list, treating as empty",
			sl.String("op", op), sl.Err(err))

		return nil
	}

	return requests
}

// SetStatus resolves a pending request. A request leaves the pending state
// exactly once; resolving it again is rejected so side effects tied to the
// transition (the rejection refund) cannot be applied twice.
func (repo *WithdrawRepository) SetStatus(ctx context.Context, id string, status model.WithdrawStatus) (model.WithdrawRequest, error) {
	const op = "repository.withdraw.SetStatus"

	repo.mu.Lock()
	defer repo.mu.Unlock()

	requests := repo.List(ctx)

	var updated model.WithdrawRequest
	found := false
	for i, req := range requests {
		if req.ID == id {
			if req.Status != model.WithdrawPending {
				return model.WithdrawRequest{}, errs.Validationf(
					"withdrawal %s is already %s", id, req.Status)
			}

			requests[i].Status = status
			updated = requests[i]
			found = true

			break
		}
	}

	if !found {
		return model.WithdrawRequest{}, errs.Validationf("withdrawal %s not found", id)
	}

	if err := repo.save(ctx, requests); err != nil {
		return model.WithdrawRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (repo *WithdrawRepository) save(ctx context.Context, requests []model.WithdrawRequest) error {
	raw, err := json.Marshal(requests)
	if err != nil {
		return err
	}

	return repo.store.Set(ctx, store.WithdrawalsKey, raw)
}
