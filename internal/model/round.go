package model

import "time"

const (
	// MaxSeri is the last seri number before the counter wraps back to 1.
	MaxSeri = 9999

	// RoundSeconds is the fixed round duration.
	RoundSeconds = 60
)

// Round is the live round record of one server. Any process may overwrite
// it; UpdatedAt and OverrideSetAt carry the logical timestamps used by the
// precedence rules applied on sync writes.
type Round struct {
	Server         ServerID `json:"server"`
	Seri           int64    `json:"seri"`
	TimeLeft       int      `json:"time_left"`
	IsActive       bool     `json:"is_active"`
	NextResult     int      `json:"next_result"`
	OverrideActive bool     `json:"override_active"`
	OverrideSetAt  int64    `json:"override_set_at,omitempty"`
	UpdatedAt      int64    `json:"updated_at"`
}

// NextSeri advances a seri number, wrapping 9999 back to 1, never 0.
func NextSeri(seri int64) int64 {
	seri++
	if seri > MaxSeri {
		return 1
	}

	return seri
}

// ResultEntry is one line of a server's result-history feed.
type ResultEntry struct {
	Seri      int64     `json:"seri"`
	Result    int       `json:"result"`
	Server    ServerID  `json:"server"`
	Timestamp time.Time `json:"timestamp"`
}
