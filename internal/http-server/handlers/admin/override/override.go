package override

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

type Request struct {
	Digit *int `json:"digit" validate:"required,min=0,max=9"`
}

type Response struct {
	resp.Response
}

// Override forces or releases the next result of one server.
type Override struct {
	log       *slog.Logger
	validator *validator.Validate
	console   *admin.Console
}

func NewOverride(log *slog.Logger, console *admin.Console) *Override {
	return &Override{
		log:       log,
		validator: validator.New(),
		console:   console,
	}
}

// Set serves POST /admin/override/{server}.
func (h *Override) Set() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.override.Set"

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

		server := model.ServerID(chi.URLParam(r, "server"))

		if err = h.console.SetOverride(r.Context(), server, *req.Digit); err != nil {
			log.Error("failed to set override", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("override set",
			slog.String("server", string(server)),
			slog.Int("digit", *req.Digit))

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}

// Clear serves DELETE /admin/override/{server}.
func (h *Override) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.override.Clear"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		server := model.ServerID(chi.URLParam(r, "server"))

		if err := h.console.ClearOverride(r.Context(), server); err != nil {
			log.Error("failed to clear override", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		log.Info("override cleared", slog.String("server", string(server)))

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
