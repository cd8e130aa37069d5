package balance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Interface is what the ledger and settlement engine need from the balance
// service.
type Interface interface {
	Income(ctx context.Context, playerID string, amount int, module string) error
	Outcome(ctx context.Context, playerID string, amount int, module string) error
}

// Service mutates player balances, writes the audit transaction for every
// mutation and publishes the new balance to the feed.
type Service struct {
	players *repository.PlayerRepository
	history *repository.HistoryRepository
	events  event.Publisher
	log     *slog.Logger
}

func New(
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	events event.Publisher,
	log *slog.Logger,
) *Service {
	return &Service{
		players: players,
		history: history,
		events:  events,
		log:     log,
	}
}

func (s *Service) Income(ctx context.Context, playerID string, amount int, module string) error {
	const op = "balance.Service.Income"

	if amount < 0 {
		return errs.Validationf("income amount must not be negative")
	}

	current := s.players.Balance(ctx, playerID)

	if err := s.players.SetBalance(ctx, playerID, current+amount); err != nil {
		s.log.Error("failed to credit balance", sl.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.record(ctx, playerID, amount, model.Income, module); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(playerID, amount, model.Income, module, current+amount)

	return nil
}

func (s *Service) Outcome(ctx context.Context, playerID string, amount int, module string) error {
	const op = "balance.Service.Outcome"

	if amount < 0 {
		return errs.Validationf("outcome amount must not be negative")
	}

	current := s.players.Balance(ctx, playerID)
	if current < amount {
		return errs.Validationf("insufficient balance: have %d, need %d", current, amount)
	}

	if err := s.players.SetBalance(ctx, playerID, current-amount); err != nil {
		s.log.Error("failed to debit balance", sl.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.record(ctx, playerID, amount, model.Outcome, module); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(playerID, amount, model.Outcome, module, current-amount)

	return nil
}

func (s *Service) record(ctx context.Context, playerID string, amount int, balanceType model.BalanceType, module string) error {
	return s.history.AppendTransaction(ctx, model.BalanceTransaction{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		Value:     amount,
		Type:      balanceType,
		Module:    module,
		CreatedAt: time.Now(),
	})
}

func (s *Service) publish(playerID string, amount int, balanceType model.BalanceType, module string, newBalance int) {
	name := event.EventIncome
	if balanceType == model.Outcome {
		name = event.EventOutcome
	}

	err := s.events.Publish(event.Message{
		Channel: event.ChannelBalance,
		Event:   name,
		Data: map[string]any{
			"player_id":      playerID,
			"amount":         strconv.Itoa(amount),
			"operation_type": string(balanceType),
			"module":         module,
			"balance":        strconv.Itoa(newBalance),
		},
	})
	if err != nil {
		s.log.Error("failed to publish balance event", sl.Err(err))
	}
}
