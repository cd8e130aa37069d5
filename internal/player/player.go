package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Registry signs players up and hands out their starting balance.
type Registry struct {
	players         *repository.PlayerRepository
	balance         balance.Interface
	startingBalance int
	log             *slog.Logger
}

func NewRegistry(players *repository.PlayerRepository, bal balance.Interface, startingBalance int, log *slog.Logger) *Registry {
	return &Registry{
		players:         players,
		balance:         bal,
		startingBalance: startingBalance,
		log:             log,
	}
}

// Register creates a new player. Names are unique case-insensitively.
func (r *Registry) Register(ctx context.Context, name, email string) (model.Player, error) {
	const op = "player.Registry.Register"

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Player{}, errs.Validationf("player name must not be empty")
	}

	for _, id := range r.players.IDs(ctx) {
		if existing, ok := r.players.Get(ctx, id); ok && strings.EqualFold(existing.Name, name) {
			return model.Player{}, errs.Validationf("player name %q is already taken", name)
		}
	}

	p := model.Player{
		ID:        "player-" + uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}

	if err := r.players.Save(ctx, p); err != nil {
		return model.Player{}, fmt.Errorf("%s: %w", op, err)
	}

	if r.startingBalance > 0 {
		if err := r.balance.Income(ctx, p.ID, r.startingBalance, "register"); err != nil {
			return model.Player{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	r.log.Info("player registered",
		sl.String("player_id", p.ID),
		sl.String("name", p.Name),
		sl.Int("starting_balance", r.startingBalance))

	return p, nil
}

// Get returns a registered player. The block flag lives in its own map, so
// it is folded into the record here.
func (r *Registry) Get(ctx context.Context, playerID string) (model.Player, error) {
	p, ok := r.players.Get(ctx, playerID)
	if !ok {
		return model.Player{}, errs.Validationf("player %s is not registered", playerID)
	}

	p.Blocked = r.players.Blocked(ctx, playerID)

	return p, nil
}

// List returns every registered player, for the admin view.
func (r *Registry) List(ctx context.Context) []model.Player {
	var players []model.Player

	for _, id := range r.players.IDs(ctx) {
		if p, ok := r.players.Get(ctx, id); ok {
			p.Blocked = r.players.Blocked(ctx, id)
			players = append(players, p)
		}
	}

	return players
}
