package model

import "time"

type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// BetHistoryEntry is an immutable per-wager settlement record, appended once
// per settled aggregated position.
type BetHistoryEntry struct {
	Category  BetCategory `json:"category"`
	Amount    int         `json:"amount"`
	Result    int         `json:"result"`
	Won       bool        `json:"won"`
	Seri      int64       `json:"seri"`
	Server    ServerID    `json:"server"`
	Timestamp time.Time   `json:"timestamp"`
}

type BalanceType string

const (
	Income  BalanceType = "income"
	Outcome BalanceType = "outcome"
)

// BalanceTransaction is the audit line written for every balance mutation.
type BalanceTransaction struct {
	ID        string      `json:"id"`
	PlayerID  string      `json:"player_id"`
	Value     int         `json:"value"`
	Type      BalanceType `json:"type"`
	Module    string      `json:"module"`
	CreatedAt time.Time   `json:"created_at"`
}

type WithdrawStatus string

const (
	WithdrawPending  WithdrawStatus = "pending"
	WithdrawApproved WithdrawStatus = "approved"
	WithdrawRejected WithdrawStatus = "rejected"
)

type WithdrawRequest struct {
	ID        string         `json:"id"`
	PlayerID  string         `json:"player_id"`
	Bank      string         `json:"bank"`
	Account   string         `json:"account"`
	Amount    int            `json:"amount"`
	Status    WithdrawStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

type ChatSender string

const (
	SenderPlayer ChatSender = "player"
	SenderAdmin  ChatSender = "admin"
)

type ChatMessage struct {
	ID       string     `json:"id"`
	PlayerID string     `json:"player_id"`
	Sender   ChatSender `json:"sender"`
	Text     string     `json:"text"`
	SentAt   time.Time  `json:"sent_at"`
}
