package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/game/admin"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Service is the player-facing wallet: withdrawal requests, transaction
// history and the customer service chat. Credits and debits themselves go
// through the balance service so every mutation leaves a transaction row.
type Service struct {
	players  *repository.PlayerRepository
	history  *repository.HistoryRepository
	withdraw *repository.WithdrawRepository
	chat     *repository.ChatRepository
	balance  balance.Interface
	queue    job.Queue
	log      *slog.Logger
}

func New(
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	withdraw *repository.WithdrawRepository,
	chat *repository.ChatRepository,
	bal balance.Interface,
	queue job.Queue,
	log *slog.Logger,
) *Service {
	return &Service{
		players:  players,
		history:  history,
		withdraw: withdraw,
		chat:     chat,
		balance:  bal,
		queue:    queue,
		log:      log,
	}
}

// RequestWithdraw debits the amount up front and files a pending request
// for admin review. Rejection refunds; approval pays out off-system.
func (s *Service) RequestWithdraw(ctx context.Context, playerID string, amount int, bank, account string) (model.WithdrawRequest, error) {
	const op = "wallet.Service.RequestWithdraw"

	if s.players.Blocked(ctx, playerID) {
		return model.WithdrawRequest{}, errs.Blockedf(
			"account is blocked; contact customer service")
	}

	if amount <= 0 {
		return model.WithdrawRequest{}, errs.Validationf("withdrawal amount must be positive")
	}
	if bal := s.players.Balance(ctx, playerID); amount > bal {
		return model.WithdrawRequest{}, errs.Validationf(
			"insufficient balance: have %d, need %d", bal, amount)
	}

	if err := s.balance.Outcome(ctx, playerID, amount, "withdraw"); err != nil {
		return model.WithdrawRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	req := model.WithdrawRequest{
		ID:        "wd-" + uuid.New().String(),
		PlayerID:  playerID,
		Bank:      bank,
		Account:   account,
		Amount:    amount,
		Status:    model.WithdrawPending,
		CreatedAt: time.Now(),
	}

	if err := s.withdraw.Append(ctx, req); err != nil {
		return model.WithdrawRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	s.queue.Dispatch(&admin.CSReplyJob{
		Chat:     s.chat,
		PlayerID: playerID,
		Text: fmt.Sprintf("We received your withdrawal request of %s. It is being reviewed by our team.",
			format.Amount(amount)),
		Log: s.log,
	}, admin.ReplyDelay)

	s.log.Info("withdrawal requested",
		sl.String("player_id", playerID),
		sl.Int("amount", amount),
		sl.String("bank", bank))

	return req, nil
}

// Requests returns the player's own withdrawal requests, newest last.
func (s *Service) Requests(ctx context.Context, playerID string) []model.WithdrawRequest {
	var own []model.WithdrawRequest

	for _, req := range s.withdraw.List(ctx) {
		if req.PlayerID == playerID {
			own = append(own, req)
		}
	}

	return own
}

// Transactions returns the player's balance mutation log.
func (s *Service) Transactions(ctx context.Context, playerID string) []model.BalanceTransaction {
	return s.history.Transactions(ctx, playerID)
}

// SendChat records a player message and queues the canned CS acknowledgement.
func (s *Service) SendChat(ctx context.Context, playerID, text string) error {
	const op = "wallet.Service.SendChat"

	if text == "" {
		return errs.Validationf("message text must not be empty")
	}

	msg := model.ChatMessage{
		ID:       "msg-" + uuid.New().String(),
		PlayerID: playerID,
		Sender:   model.SenderPlayer,
		Text:     text,
		SentAt:   time.Now(),
	}

	if err := s.chat.Append(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.queue.Dispatch(&admin.CSReplyJob{
		Chat:     s.chat,
		PlayerID: playerID,
		Text:     "Thank you for contacting customer service. An agent will reply shortly.",
		Log:      s.log,
	}, admin.ReplyDelay)

	return nil
}

// Messages returns the player's chat history.
func (s *Service) Messages(ctx context.Context, playerID string) []model.ChatMessage {
	return s.chat.Messages(ctx, playerID)
}
