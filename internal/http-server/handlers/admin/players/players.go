package players

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/game/admin"
	resp "github.com/putridahliana91-coder/senoplan/internal/lib/api/response"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/player"
)

type ListResponse struct {
	resp.Response
	Players []model.Player `json:"players"`
}

type BalanceRequest struct {
	Amount int `json:"amount" validate:"required,min=1"`
}

type BlockRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

type WithdrawalsResponse struct {
	resp.Response
	Requests []model.WithdrawRequest `json:"requests"`
}

type ResolveRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

type ReplyRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// Players is the admin player-management surface: listing, block flags,
// direct balance operations, bonuses, deletion and withdrawal review.
type Players struct {
	log       *slog.Logger
	validator *validator.Validate
	console   *admin.Console
	registry  *player.Registry
}

func NewPlayers(log *slog.Logger, console *admin.Console, registry *player.Registry) *Players {
	return &Players{
		log:       log,
		validator: validator.New(),
		console:   console,
		registry:  registry,
	}
}

// List serves GET /admin/players.
func (h *Players) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Players:  h.registry.List(r.Context()),
		})
	}
}

// AddBalance serves POST /admin/players/{id}/balance.
func (h *Players) AddBalance() http.HandlerFunc {
	return h.balanceOp("handlers.admin.players.AddBalance",
		func(r *http.Request, playerID string, amount int) error {
			return h.console.AddBalance(r.Context(), playerID, amount)
		})
}

// Bonus serves POST /admin/players/{id}/bonus.
func (h *Players) Bonus() http.HandlerFunc {
	return h.balanceOp("handlers.admin.players.Bonus",
		func(r *http.Request, playerID string, amount int) error {
			return h.console.ActivateBonus(r.Context(), playerID, amount)
		})
}

func (h *Players) balanceOp(op string, apply func(r *http.Request, playerID string, amount int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			err error
			req BalanceRequest
		)

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = h.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		playerID := chi.URLParam(r, "id")

		if err = apply(r, playerID, req.Amount); err != nil {
			log.Error("balance operation failed", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

// ResetBalance serves POST /admin/players/{id}/reset-balance.
func (h *Players) ResetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.players.ResetBalance"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		playerID := chi.URLParam(r, "id")

		if err := h.console.ResetBalance(r.Context(), playerID); err != nil {
			log.Error("failed to reset balance", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

// SetBlocked serves POST /admin/players/{id}/block.
func (h *Players) SetBlocked() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.players.SetBlocked"

		var (
			err error
			req BlockRequest
		)

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = h.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		playerID := chi.URLParam(r, "id")

		if err = h.console.SetBlocked(r.Context(), playerID, *req.Blocked); err != nil {
			log.Error("failed to set block flag", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("block flag updated",
			slog.String("player_id", playerID),
			slog.Bool("blocked", *req.Blocked))

		render.JSON(w, r, resp.OK())
	}
}

// Delete serves DELETE /admin/players/{id}.
func (h *Players) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.players.Delete"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		playerID := chi.URLParam(r, "id")

		if err := h.console.DeletePlayer(r.Context(), playerID); err != nil {
			log.Error("failed to delete player", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}

// Withdrawals serves GET /admin/withdrawals.
func (h *Players) Withdrawals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, WithdrawalsResponse{
			Response: resp.OK(),
			Requests: h.console.Withdrawals(r.Context()),
		})
	}
}

// ResolveWithdrawal serves POST /admin/withdrawals/{id}.
func (h *Players) ResolveWithdrawal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.players.ResolveWithdrawal"

		var (
			err error
			req ResolveRequest
		)

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = h.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		requestID := chi.URLParam(r, "id")

		if err = h.console.ResolveWithdrawal(r.Context(), requestID, *req.Approve); err != nil {
			log.Error("failed to resolve withdrawal", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("withdrawal resolved",
			slog.String("request_id_param", requestID),
			slog.Bool("approved", *req.Approve))

		render.JSON(w, r, resp.OK())
	}
}

// Reply serves POST /admin/players/{id}/chat.
func (h *Players) Reply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.players.Reply"

		var (
			err error
			req ReplyRequest
		)

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		if err = h.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		playerID := chi.URLParam(r, "id")

		if err = h.console.Reply(r.Context(), playerID, req.Text); err != nil {
			log.Error("failed to send reply", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}
