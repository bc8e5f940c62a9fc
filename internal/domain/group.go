package domain

// EventGroup is a cluster of markets judged to reference the same real-world
// event. Singleton groups hold markets with no match.
type EventGroup struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Markets        []UnifiedMarket `json:"markets"`
	TotalVolume    float64         `json:"totalVolume"`
	AvgProbability float64         `json:"avgProbability"`
	Platforms      []Platform      `json:"platforms"`
	Category       Category        `json:"category"`
}

// IsCrossListed reports whether the group spans more than one market.
func (g EventGroup) IsCrossListed() bool {
	return len(g.Markets) >= 2
}
