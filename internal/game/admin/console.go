package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/game/round"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Console is the operator surface: live wager aggregation, result override,
// bet reassignment/cancellation, direct balance mutation and player
// management. Balance writes here bypass the ledger entirely; the player
// session picks them up through its reconciliation poll.
type Console struct {
	ledger   *bet.Ledger
	override *round.OverrideChannel
	balance  *balance.Service
	players  *repository.PlayerRepository
	wagers   *repository.WagerRepository
	withdraw *repository.WithdrawRepository
	chat     *repository.ChatRepository
	queue    job.Queue
	events   event.Publisher
	log      *slog.Logger
}

func NewConsole(
	ledger *bet.Ledger,
	override *round.OverrideChannel,
	bal *balance.Service,
	players *repository.PlayerRepository,
	wagers *repository.WagerRepository,
	withdraw *repository.WithdrawRepository,
	chat *repository.ChatRepository,
	queue job.Queue,
	events event.Publisher,
	log *slog.Logger,
) *Console {
	return &Console{
		ledger:   ledger,
		override: override,
		balance:  bal,
		players:  players,
		wagers:   wagers,
		withdraw: withdraw,
		chat:     chat,
		queue:    queue,
		events:   events,
		log:      log,
	}
}

// Groups returns every open position across all players, aggregated per
// (player, category, server, round) for the live monitoring view.
func (c *Console) Groups(ctx context.Context) []model.AggregatedWager {
	return c.ledger.PendingAggregates(ctx)
}

// ReassignGroup moves all pending increments of one aggregation key to a
// new category.
func (c *Console) ReassignGroup(ctx context.Context, key model.WagerKey, newCategory model.BetCategory) (int, error) {
	return c.ledger.Reassign(ctx, key, newCategory)
}

// CancelWager removes one pending increment. No refund; documented quirk.
func (c *Console) CancelWager(ctx context.Context, wagerID string) error {
	return c.ledger.Cancel(ctx, wagerID)
}

// SetOverride forces the pending result of a server.
func (c *Console) SetOverride(ctx context.Context, server model.ServerID, digit int) error {
	return c.override.Set(ctx, server, digit)
}

// ClearOverride returns a server to random results.
func (c *Console) ClearOverride(ctx context.Context, server model.ServerID) error {
	return c.override.Clear(ctx, server)
}

// AddBalance credits a player directly and queues the automatic CS
// confirmation message.
func (c *Console) AddBalance(ctx context.Context, playerID string, amount int) error {
	const op = "game.admin.Console.AddBalance"

	if amount <= 0 {
		return errs.Validationf("amount must be positive")
	}
	if _, ok := c.players.Get(ctx, playerID); !ok {
		return errs.Validationf("player %s is not registered", playerID)
	}

	if err := c.balance.Income(ctx, playerID, amount, "admin"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	newBalance := c.players.Balance(ctx, playerID)

	c.queue.Dispatch(&CSReplyJob{
		Chat:     c.chat,
		PlayerID: playerID,
		Text: fmt.Sprintf("Your deposit of %s has been credited. New balance: %s.",
			format.Amount(amount), format.Amount(newBalance)),
		Log: c.log,
	}, ReplyDelay)

	c.publishBalance(playerID, "add", newBalance)

	return nil
}

// ResetBalance zeroes a player's balance.
func (c *Console) ResetBalance(ctx context.Context, playerID string) error {
	const op = "game.admin.Console.ResetBalance"

	current := c.players.Balance(ctx, playerID)

	if err := c.balance.Outcome(ctx, playerID, current, "admin"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.publishBalance(playerID, "reset", 0)

	c.log.Info("balance reset", sl.String("player_id", playerID))

	return nil
}

// ActivateBonus credits a bonus amount and queues the bonus CS message.
func (c *Console) ActivateBonus(ctx context.Context, playerID string, amount int) error {
	const op = "game.admin.Console.ActivateBonus"

	if amount <= 0 {
		return errs.Validationf("bonus amount must be positive")
	}

	if err := c.balance.Income(ctx, playerID, amount, "bonus"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	newBalance := c.players.Balance(ctx, playerID)

	c.queue.Dispatch(&CSReplyJob{
		Chat:     c.chat,
		PlayerID: playerID,
		Text: fmt.Sprintf("Congratulations! You received a bonus of %s. Activate it to withdraw your full balance of %s.",
			format.Amount(amount), format.Amount(newBalance)),
		Log: c.log,
	}, ReplyDelay)

	c.publishBalance(playerID, "bonus", newBalance)

	return nil
}

// SetBlocked toggles the per-player block flag; a blocked player cannot
// place bets or request withdrawals.
func (c *Console) SetBlocked(ctx context.Context, playerID string, blocked bool) error {
	return c.players.SetBlocked(ctx, playerID, blocked)
}

// DeletePlayer removes a player and everything attached to them.
func (c *Console) DeletePlayer(ctx context.Context, playerID string) error {
	const op = "game.admin.Console.DeletePlayer"

	if err := c.wagers.RemovePlayer(ctx, playerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.players.Delete(ctx, playerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("player deleted", sl.String("player_id", playerID))

	return nil
}

// Withdrawals lists all withdrawal requests.
func (c *Console) Withdrawals(ctx context.Context) []model.WithdrawRequest {
	return c.withdraw.List(ctx)
}

// ResolveWithdrawal approves or rejects a pending request. The amount was
// already debited at request time; rejection refunds it.
func (c *Console) ResolveWithdrawal(ctx context.Context, id string, approve bool) error {
	const op = "game.admin.Console.ResolveWithdrawal"

	status := model.WithdrawApproved
	if !approve {
		status = model.WithdrawRejected
	}

	req, err := c.withdraw.SetStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !approve {
		if err = c.balance.Income(ctx, req.PlayerID, req.Amount, "withdraw-refund"); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	text := fmt.Sprintf("Your withdrawal of %s has been approved and is on its way.",
		format.Amount(req.Amount))
	if !approve {
		text = fmt.Sprintf("Your withdrawal of %s was rejected; the amount has been returned to your balance.",
			format.Amount(req.Amount))
	}

	c.queue.Dispatch(&CSReplyJob{
		Chat:     c.chat,
		PlayerID: req.PlayerID,
		Text:     text,
		Log:      c.log,
	}, ReplyDelay)

	return nil
}

// Reply sends an admin chat message to one player.
func (c *Console) Reply(ctx context.Context, playerID, text string) error {
	if text == "" {
		return errs.Validationf("message text must not be empty")
	}

	return c.chat.Append(ctx, model.ChatMessage{
		ID:       "admin-" + uuid.New().String(),
		PlayerID: playerID,
		Sender:   model.SenderAdmin,
		Text:     text,
		SentAt:   time.Now(),
	})
}

func (c *Console) publishBalance(playerID, operation string, newBalance int) {
	err := c.events.Publish(event.Message{
		Channel: event.ChannelBalance,
		Event:   event.EventAdminBalance,
		Data: map[string]any{
			"player_id": playerID,
			"operation": operation,
			"balance":   format.Amount(newBalance),
		},
	})
	if err != nil {
		c.log.Error("failed to publish admin balance event", sl.Err(err))
	}
}
