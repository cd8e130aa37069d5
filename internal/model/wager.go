package model

import (
	"fmt"
	"time"
)

type WagerStatus string

const (
	WagerPending WagerStatus = "pending"
	WagerSettled WagerStatus = "settled"
)

// WagerIncrement is one placed bet increment. Increments sharing the same
// aggregation key merge into a single position for settlement and display,
// but every increment stays individually recorded for audit.
type WagerIncrement struct {
	ID              string      `json:"id"`
	PlayerID        string      `json:"player_id"`
	PlayerName      string      `json:"player_name,omitempty"`
	Category        BetCategory `json:"category"`
	Amount          int         `json:"amount"`
	Server          ServerID    `json:"server"`
	Seri            int64       `json:"seri"`
	PlacedAt        time.Time   `json:"placed_at"`
	Status          WagerStatus `json:"status"`
	AdminReassigned bool        `json:"admin_reassigned"`
}

// WagerKey is the aggregation key: one open position per player, category,
// server and round.
type WagerKey struct {
	PlayerID string      `json:"player_id"`
	Category BetCategory `json:"category"`
	Server   ServerID    `json:"server"`
	Seri     int64       `json:"seri"`
}

func (k WagerKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%d", k.PlayerID, k.Category, k.Server, k.Seri)
}

func (w WagerIncrement) Key() WagerKey {
	return WagerKey{
		PlayerID: w.PlayerID,
		Category: w.Category,
		Server:   w.Server,
		Seri:     w.Seri,
	}
}

// AggregatedWager is the merged view of all pending increments sharing one
// aggregation key.
type AggregatedWager struct {
	Key             WagerKey  `json:"key"`
	Total           int       `json:"total"`
	Increments      int       `json:"increments"`
	AdminReassigned bool      `json:"admin_reassigned"`
	LastPlacedAt    time.Time `json:"last_placed_at"`
}

// Aggregate merges pending increments into positions, preserving first-seen
// order of the keys.
func Aggregate(increments []WagerIncrement) []AggregatedWager {
	var (
		order []WagerKey
		byKey = make(map[WagerKey]*AggregatedWager)
	)

	for _, inc := range increments {
		if inc.Status != WagerPending {
			continue
		}

		key := inc.Key()

		agg, ok := byKey[key]
		if !ok {
			agg = &AggregatedWager{Key: key}
			byKey[key] = agg
			order = append(order, key)
		}

		agg.Total += inc.Amount
		agg.Increments++
		agg.AdminReassigned = agg.AdminReassigned || inc.AdminReassigned

		if inc.PlacedAt.After(agg.LastPlacedAt) {
			agg.LastPlacedAt = inc.PlacedAt
		}
	}

	result := make([]AggregatedWager, 0, len(order))
	for _, key := range order {
		result = append(result, *byKey[key])
	}

	return result
}
