package store

import (
	"context"
	"errors"

	"github.com/putridahliana91-coder/senoplan/internal/model"
)

// ErrNotFound is returned for absent keys. Readers treat it as "zero value",
// never as a failure.
var ErrNotFound = errors.New("key not found")

// Store is the shared state document every process (player sessions, the
// two round timers, the admin console) communicates through. There is no
// locking across writers: every mutation is a total overwrite of one key and
// last write wins. Conflicting writers resolve via the logical timestamps
// carried inside the records, not by the store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Watch returns a channel that receives a signal after every write to
	// key. Notifications are best-effort; polling remains the worst-case
	// staleness bound.
	Watch(key string) <-chan struct{}

	Close() error
}

// Key layout. One record per key unless noted.

func RoundKey(server model.ServerID) string {
	return "round_state_" + string(server)
}

func ResultHistoryKey(server model.ServerID) string {
	return "result_history_" + string(server)
}

func SettledMarkKey(server model.ServerID) string {
	return "settled_mark_" + string(server)
}

// LiveWagersKey holds the ordered list of pending wager increments shared
// with the admin console.
const LiveWagersKey = "live_betting_activities"

func BalanceKey(playerID string) string {
	return "balance_" + playerID
}

func BetHistoryKey(playerID string) string {
	return "bet_history_" + playerID
}

func TransactionsKey(playerID string) string {
	return "balance_transactions_" + playerID
}

func ChatKey(playerID string) string {
	return "chat_messages_" + playerID
}

func PlayerKey(playerID string) string {
	return "player_" + playerID
}

// PlayersIndexKey lists all registered player ids.
const PlayersIndexKey = "registered_players"

// BlocksKey maps player id to the blocked flag.
const BlocksKey = "player_blocks"

const WithdrawalsKey = "withdrawal_requests"
