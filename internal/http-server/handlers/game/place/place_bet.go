package place

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/game/session"
	resp "github.com/putridahliana91-coder/senoplan/internal/lib/api/response"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
)

type Request struct {
	PlayerID string `json:"player_id" validate:"required"`
	Category string `json:"category" validate:"required"`
	Amount   int    `json:"amount" validate:"required,min=1"`
}

type Response struct {
	resp.Response
	Category string `json:"bet_category,omitempty"`
	Total    int    `json:"total,omitempty"`
	Balance  string `json:"balance,omitempty"`
}

type Bet struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  *session.Manager
}

func NewBet(log *slog.Logger, sessions *session.Manager) *Bet {
	return &Bet{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
	}
}

func (b *Bet) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.game.place.New"

		var (
			err error
			req Request
			log *slog.Logger
		)

		log = b.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = b.validator.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		server := model.ServerID(chi.URLParam(r, "server"))
		if !server.Valid() {
			render.JSON(w, r, resp.Error("unknown server", http.StatusNotFound))

			return
		}

		sess, err := b.sessions.Open(r.Context(), req.PlayerID, server)
		if err != nil {
			log.Error("failed to open session", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		if err = sess.SwitchServer(server); err != nil {
			render.JSON(w, r, resp.GameError(err))

			return
		}

		if err = sess.PlaceBet(r.Context(), model.BetCategory(req.Category), req.Amount); err != nil {
			log.Error("failed to place bet", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		category, total, _ := sess.Position()

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Category: string(category),
			Total:    total,
			Balance:  format.Amount(sess.Balance()),
		})
	}
}
