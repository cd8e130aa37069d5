package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	resp "github.com/putridahliana91-coder/senoplan/internal/lib/api/response"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	wsvc "github.com/putridahliana91-coder/senoplan/internal/wallet"
)

type WithdrawRequest struct {
	Amount  int    `json:"amount" validate:"required,min=1"`
	Bank    string `json:"bank" validate:"required"`
	Account string `json:"account" validate:"required"`
}

type WithdrawResponse struct {
	resp.Response
	RequestID string `json:"request_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

type BalanceResponse struct {
	resp.Response
	Balance string `json:"balance"`
}

type TransactionsResponse struct {
	resp.Response
	Transactions []model.BalanceTransaction `json:"transactions"`
}

type ChatRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type ChatResponse struct {
	resp.Response
	Messages []model.ChatMessage `json:"messages,omitempty"`
}

type BetsResponse struct {
	resp.Response
	Bets []model.BetHistoryEntry `json:"bets"`
}

// Wallet bundles the player-facing money endpoints: balance, transaction
// history, bet history, withdrawal requests and the customer service chat.
type Wallet struct {
	log       *slog.Logger
	validator *validator.Validate
	players   *repository.PlayerRepository
	history   *repository.HistoryRepository
	service   *wsvc.Service
}

func NewWallet(
	log *slog.Logger,
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	service *wsvc.Service,
) *Wallet {
	return &Wallet{
		log:       log,
		validator: validator.New(),
		players:   players,
		history:   history,
		service:   service,
	}
}

// Balance serves GET /player/{id}/balance.
func (h *Wallet) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "id")

		if _, ok := h.players.Get(r.Context(), playerID); !ok {
			render.JSON(w, r, resp.Error("player not found", http.StatusNotFound))

			return
		}

		render.JSON(w, r, BalanceResponse{
			Response: resp.OK(),
			Balance:  format.Amount(h.players.Balance(r.Context(), playerID)),
		})
	}
}

// Transactions serves GET /player/{id}/transactions.
func (h *Wallet) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "id")

		render.JSON(w, r, TransactionsResponse{
			Response:     resp.OK(),
			Transactions: h.service.Transactions(r.Context(), playerID),
		})
	}
}

// Bets serves GET /player/{id}/bets.
func (h *Wallet) Bets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "id")

		render.JSON(w, r, BetsResponse{
			Response: resp.OK(),
			Bets:     h.history.Bets(r.Context(), playerID),
		})
	}
}

// Withdraw serves POST /player/{id}/withdraw.
func (h *Wallet) Withdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.player.wallet.Withdraw"

		var (
			err error
			req WithdrawRequest
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

		playerID := chi.URLParam(r, "id")

		if _, ok := h.players.Get(r.Context(), playerID); !ok {
			render.JSON(w, r, resp.Error("player not found", http.StatusNotFound))

			return
		}

		wr, err := h.service.RequestWithdraw(r.Context(), playerID, req.Amount, req.Bank, req.Account)
		if err != nil {
			log.Error("failed to request withdrawal", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, WithdrawResponse{
			Response:  resp.OK(),
			RequestID: wr.ID,
			Status:    string(wr.Status),
		})
	}
}

// SendChat serves POST /player/{id}/chat.
func (h *Wallet) SendChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.player.wallet.SendChat"

		var (
			err error
			req ChatRequest
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

			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		playerID := chi.URLParam(r, "id")

		if err = h.service.SendChat(r.Context(), playerID, req.Text); err != nil {
			log.Error("failed to send chat message", sl.Err(err))

			render.JSON(w, r, resp.GameError(err))

			return
		}

		render.JSON(w, r, ChatResponse{Response: resp.OK()})
	}
}

// Messages serves GET /player/{id}/chat.
func (h *Wallet) Messages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := chi.URLParam(r, "id")

		render.JSON(w, r, ChatResponse{
			Response: resp.OK(),
			Messages: h.service.Messages(r.Context(), playerID),
		})
	}
}
