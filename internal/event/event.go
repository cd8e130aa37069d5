package event

// Message is one event published to the dashboards.
type Message struct {
	Channel string         `json:"channel"`
	Event   string         `json:"event"`
	Data    map[string]any `json:"data"`
}

// Channel and event names shared by publishers and consumers.
const (
	ChannelRounds  = "rounds-channel"
	ChannelBalance = "balance-channel"
	ChannelBets    = "bets-channel"
	ChannelNotices = "notices-channel"

	EventRoundResult  = "round-result"
	EventRoundSync    = "round-sync"
	EventBetPlaced    = "bet-placed"
	EventBetSettled   = "bet-settled"
	EventIncome       = "income-event"
	EventOutcome      = "outcome-event"
	EventAdminBalance = "admin-balance-event"
	EventNotice       = "notice-event"
)

// Publisher fans events out to whatever surfaces are listening. Publishing
// is best effort everywhere: a lost event is healed by the next poll.
type Publisher interface {
	Publish(msg Message) error
}

// Nop discards every event. Used in tests and minimal wiring.
type Nop struct{}

func (Nop) Publish(Message) error { return nil }

// Multi publishes to several backends, keeping the first error.
type Multi []Publisher

func (m Multi) Publish(msg Message) error {
	var firstErr error

	for _, p := range m {
		if err := p.Publish(msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
