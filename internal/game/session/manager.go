package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
)

// Manager keeps one running session per signed-in player.
type Manager struct {
	ledger  *bet.Ledger
	rounds  *repository.RoundRepository
	wagers  *repository.WagerRepository
	players *repository.PlayerRepository
	history *repository.HistoryRepository
	events  event.Publisher
	log     *slog.Logger

	interval time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	cancels  map[string]context.CancelFunc
}

func NewManager(
	ledger *bet.Ledger,
	rounds *repository.RoundRepository,
	wagers *repository.WagerRepository,
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	events event.Publisher,
	log *slog.Logger,
	interval time.Duration,
) *Manager {
	return &Manager{
		ledger:   ledger,
		rounds:   rounds,
		wagers:   wagers,
		players:  players,
		history:  history,
		events:   events,
		log:      log,
		interval: interval,
		sessions: make(map[string]*Session),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Open returns the player's session, starting its poll loop on first use.
func (m *Manager) Open(ctx context.Context, playerID string, server model.ServerID) (*Session, error) {
	if _, ok := m.players.Get(ctx, playerID); !ok {
		return nil, errs.Validationf("player %s is not registered", playerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[playerID]; ok {
		return s, nil
	}

	s := New(playerID, server, m.ledger, m.rounds, m.wagers, m.players, m.history, m.events, m.log)

	runCtx, cancel := context.WithCancel(context.Background())
	m.sessions[playerID] = s
	m.cancels[playerID] = cancel

	go s.Run(runCtx, m.interval)

	return s, nil
}

// Get returns a running session without starting one.
func (m *Manager) Get(playerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[playerID]

	return s, ok
}

// Close stops and forgets a player's session.
func (m *Manager) Close(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.cancels[playerID]; ok {
		cancel()
		delete(m.cancels, playerID)
	}

	delete(m.sessions, playerID)
}
