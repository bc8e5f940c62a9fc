package domain

import "time"

// AlertCondition selects the direction of a price alert.
type AlertCondition string

const (
	AlertAbove AlertCondition = "above"
	AlertBelow AlertCondition = "below"
)

// Valid reports whether c is a known condition.
func (c AlertCondition) Valid() bool {
	return c == AlertAbove || c == AlertBelow
}

// Alert fires once when a market's probability crosses Threshold.
type Alert struct {
	ID             string         `json:"id"`
	MarketID       string         `json:"marketId"`
	MarketQuestion string         `json:"marketQuestion"`
	Platform       Platform       `json:"platform"`
	Condition      AlertCondition `json:"condition"`
	Threshold      float64        `json:"threshold"`
	CreatedAt      time.Time      `json:"createdAt"`
	Triggered      bool           `json:"triggered"`
	TriggeredAt    *time.Time     `json:"triggeredAt,omitempty"`
}

// ShouldTrigger reports whether probability satisfies the alert condition.
// Both comparisons are inclusive. Already-triggered alerts never fire again.
func (a Alert) ShouldTrigger(probability float64) bool {
	if a.Triggered {
		return false
	}
	switch a.Condition {
	case AlertAbove:
		return probability >= a.Threshold
	case AlertBelow:
		return probability <= a.Threshold
	default:
		return false
	}
}
