package login

import (
	"net/http"

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
	Server   string `json:"server" validate:"required"`
}

type Response struct {
	resp.Response
	Server   string `json:"server,omitempty"`
	Balance  string `json:"balance,omitempty"`
	Category string `json:"bet_category,omitempty"`
	Total    int    `json:"total,omitempty"`
	Pending  bool   `json:"pending"`
}

// Login opens the player's game session on the chosen server. No
// credentials; the player id is the whole identity.
type Login struct {
	log       *slog.Logger
	validator *validator.Validate
	sessions  *session.Manager
}

func NewLogin(log *slog.Logger, sessions *session.Manager) *Login {
	return &Login{
		log:       log,
		validator: validator.New(),
		sessions:  sessions,
	}
}

func (h *Login) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.player.login.New"

		var (
			err error
			req Request
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

		server := model.ServerID(req.Server)
		if !server.Valid() {
			render.JSON(w, r, resp.Error("unknown server", http.StatusNotFound))

			return
		}

		sess, err := h.sessions.Open(r.Context(), req.PlayerID, server)
		if err != nil {
			log.Error("failed to open session", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		if err = sess.SwitchServer(server); err != nil {
			render.JSON(w, r, resp.GameError(err))

			return
		}

		category, total, pending := sess.Position()

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Server:   string(sess.Server()),
			Balance:  format.Amount(sess.Balance()),
			Category: string(category),
			Total:    total,
			Pending:  pending,
		})
	}
}

// Logout closes the player's running session.
func (h *Login) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil || req.PlayerID == "" {
			render.JSON(w, r, resp.Error("failed to decode request body", http.StatusBadRequest))

			return
		}

		h.sessions.Close(req.PlayerID)

		render.JSON(w, r, resp.OK())
	}
}
