package state

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	resp "github.com/putridahliana91-coder/senoplan/internal/lib/api/response"
	"github.com/putridahliana91-coder/senoplan/internal/lib/format"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

type Response struct {
	resp.Response
	Server    string `json:"server"`
	Seri      string `json:"seri"`
	Countdown string `json:"countdown"`
	IsActive  bool   `json:"is_active"`
}

type ResultsResponse struct {
	resp.Response
	Results []ResultItem `json:"results"`
}

type ResultItem struct {
	Seri   string   `json:"seri"`
	Result int      `json:"result"`
	Tags   []string `json:"tags"`
}

// State serves the public round view: countdown, seri, recent results.
// The pending result digit is never exposed here.
type State struct {
	log    *slog.Logger
	rounds *repository.RoundRepository
	tags   func(result int) []string
}

func NewState(log *slog.Logger, rounds *repository.RoundRepository, tags func(result int) []string) *State {
	return &State{
		log:    log,
		rounds: rounds,
		tags:   tags,
	}
}

func (s *State) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.game.state.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		server := model.ServerID(chi.URLParam(r, "server"))
		if !server.Valid() {
			render.JSON(w, r, resp.Error("unknown server", http.StatusNotFound))

			return
		}

		round := s.rounds.GetRound(r.Context(), server)

		log.Debug("round state served", slog.String("server", string(server)))

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Server:    string(server),
			Seri:      format.Seri(round.Seri),
			Countdown: format.Countdown(round.TimeLeft),
			IsActive:  round.IsActive,
		})
	}
}

// Results serves the server's result-history feed, newest last.
func (s *State) Results() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		server := model.ServerID(chi.URLParam(r, "server"))
		if !server.Valid() {
			render.JSON(w, r, resp.Error("unknown server", http.StatusNotFound))

			return
		}

		entries := s.rounds.Results(r.Context(), server)

		items := make([]ResultItem, 0, len(entries))
		for _, entry := range entries {
			items = append(items, ResultItem{
				Seri:   format.Seri(entry.Seri),
				Result: entry.Result,
				Tags:   s.tags(entry.Result),
			})
		}

		render.JSON(w, r, ResultsResponse{
			Response: resp.OK(),
			Results:  items,
		})
	}
}
