package register

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	resp "github.com/putridahliana91-coder/senoplan/internal/lib/api/response"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/player"
)

type Request struct {
	Name  string `json:"name" validate:"required,min=3,max=32"`
	Email string `json:"email" validate:"omitempty,email"`
}

type Response struct {
	resp.Response
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

type Register struct {
	log       *slog.Logger
	validator *validator.Validate
	registry  *player.Registry
}

func NewRegister(log *slog.Logger, registry *player.Registry) *Register {
	return &Register{
		log:       log,
		validator: validator.New(),
		registry:  registry,
	}
}

func (h *Register) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.player.register.New"

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

		p, err := h.registry.Register(r.Context(), req.Name, req.Email)
		if err != nil {
			log.Error("failed to register player", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			PlayerID: p.ID,
			Name:     p.Name,
		})
	}
}
