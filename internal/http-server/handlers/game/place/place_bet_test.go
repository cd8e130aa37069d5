package place

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/game/session"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	"github.com/putridahliana91-coder/senoplan/internal/store"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()

	players := repository.NewPlayerRepository(st, log)
	history := repository.NewHistoryRepository(st, log)
	wagers := repository.NewWagerRepository(st, log)
	rounds := repository.NewRoundRepository(st, log)
	bal := balance.New(players, history, event.Nop{}, log)
	ledger := bet.NewLedger(wagers, players, bal, event.Nop{}, log)

	ctx := context.Background()
	if err := players.Save(ctx, model.Player{ID: "p1", Name: "Budi"}); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if err := players.SetBalance(ctx, "p1", 1000); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	err := rounds.SaveRound(ctx, model.Round{
		Server:     model.Server1,
		Seri:       2271,
		TimeLeft:   45,
		IsActive:   true,
		NextResult: 7,
	})
	if err != nil {
		t.Fatalf("seed round: %v", err)
	}

	sessions := session.NewManager(ledger, rounds, wagers, players, history,
		event.Nop{}, log, time.Minute)

	router := chi.NewRouter()
	router.Post("/game/{server}/place-bet", NewBet(log, sessions).New())

	return router
}

func postBet(t *testing.T, router *chi.Mux, server, body string) Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/game/"+server+"/place-bet",
		bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var res Response
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return res
}

func TestBet_Place(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	res := postBet(t, router, "server1",
		`{"player_id":"p1","category":"besar","amount":200}`)

	if res.Status != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", res.Status, res.Error)
	}
	if res.Category != "besar" || res.Total != 200 {
		t.Errorf("unexpected position: %s %d", res.Category, res.Total)
	}
	if res.Balance != "800" {
		t.Errorf("unexpected balance, want: 800, got: %s", res.Balance)
	}
}

func TestBet_Rejections(t *testing.T) {
	cases := []struct {
		name       string
		server     string
		body       string
		wantStatus int
	}{
		{
			name:       "UnknownServer",
			server:     "server9",
			body:       `{"player_id":"p1","category":"besar","amount":100}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "UnknownCategory",
			server:     "server1",
			body:       `{"player_id":"p1","category":"merah","amount":100}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "UnregisteredPlayer",
			server:     "server1",
			body:       `{"player_id":"ghost","category":"besar","amount":100}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "MissingAmount",
			server:     "server1",
			body:       `{"player_id":"p1","category":"besar"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InsufficientBalance",
			server:     "server1",
			body:       `{"player_id":"p1","category":"besar","amount":100000}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t)

			res := postBet(t, router, tc.server, tc.body)
			if res.Status != tc.wantStatus {
				t.Errorf("unexpected status, want: %d, got: %d (%s)",
					tc.wantStatus, res.Status, res.Error)
			}
		})
	}
}
