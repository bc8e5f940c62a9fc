package domain

import "time"

// HistoryRange is the window requested for a price history.
type HistoryRange string

const (
	Range24h HistoryRange = "24h"
	Range7d  HistoryRange = "7d"
	Range30d HistoryRange = "30d"
	RangeAll HistoryRange = "all"
)

// ParseHistoryRange maps a query value to a range, defaulting to 7d.
func ParseHistoryRange(s string) HistoryRange {
	switch HistoryRange(s) {
	case Range24h, Range7d, Range30d, RangeAll:
		return HistoryRange(s)
	default:
		return Range7d
	}
}

// Since returns the start of the window ending at now. "all" reaches back
// one year.
func (r HistoryRange) Since(now time.Time) time.Time {
	switch r {
	case Range24h:
		return now.Add(-24 * time.Hour)
	case Range30d:
		return now.Add(-30 * 24 * time.Hour)
	case RangeAll:
		return now.Add(-365 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

// HistoryPoint is one sample; Time is unix seconds, Value a 0-100 probability.
type HistoryPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Well-known history sources.
const (
	HistorySourceSnapshots = "snapshots"
	HistorySourceEstimated = "estimated"
)

// PriceHistory is the result of a history lookup.
type PriceHistory struct {
	MarketID string         `json:"marketId"`
	Range    HistoryRange   `json:"range"`
	Source   string         `json:"source"`
	Points   []HistoryPoint `json:"history"`
}

// PriceSnapshot is a recorded probability observation for one market.
type PriceSnapshot struct {
	MarketID    string    `json:"marketId"`
	Platform    Platform  `json:"platform"`
	Probability float64   `json:"probability"`
	Volume      float64   `json:"volume"`
	RecordedAt  time.Time `json:"recordedAt"`
}
