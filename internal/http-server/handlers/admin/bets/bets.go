package bets

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
)

type GroupsResponse struct {
	resp.Response
	Groups []model.AggregatedWager `json:"groups"`
}

type ReassignRequest struct {
	PlayerID    string `json:"player_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Server      string `json:"server" validate:"required"`
	Seri        int64  `json:"seri" validate:"required"`
	NewCategory string `json:"new_category" validate:"required"`
}

type ReassignResponse struct {
	resp.Response
	Increments int `json:"increments"`
}

// Bets is the admin live wager surface: aggregated groups, category
// reassignment and increment cancellation.
type Bets struct {
	log       *slog.Logger
	validator *validator.Validate
	console   *admin.Console
}

func NewBets(log *slog.Logger, console *admin.Console) *Bets {
	return &Bets{
		log:       log,
		validator: validator.New(),
		console:   console,
	}
}

// Groups serves GET /admin/bets.
func (h *Bets) Groups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, GroupsResponse{
			Response: resp.OK(),
			Groups:   h.console.Groups(r.Context()),
		})
	}
}

// Reassign serves POST /admin/bets/reassign.
func (h *Bets) Reassign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.bets.Reassign"

		var (
			err error
			req ReassignRequest
			log *slog.Logger
		)

		log = h.log.With(
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

		key := model.WagerKey{
			PlayerID: req.PlayerID,
			Category: model.BetCategory(req.Category),
			Server:   model.ServerID(req.Server),
			Seri:     req.Seri,
		}

		changed, err := h.console.ReassignGroup(r.Context(), key, model.BetCategory(req.NewCategory))
		if err != nil {
			log.Error("failed to reassign bets", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("bets reassigned",
			slog.String("key", key.String()),
			slog.String("new_category", req.NewCategory),
			slog.Int("increments", changed))

		render.JSON(w, r, ReassignResponse{
			Response:   resp.OK(),
			Increments: changed,
		})
	}
}

// Cancel serves DELETE /admin/bets/{id}.
func (h *Bets) Cancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.bets.Cancel"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		wagerID := chi.URLParam(r, "id")

		if err := h.console.CancelWager(r.Context(), wagerID); err != nil {
			log.Error("failed to cancel wager", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("wager cancelled", slog.String("wager_id", wagerID))

		render.JSON(w, r, resp.OK())
	}
}
