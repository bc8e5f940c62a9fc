package domain

// PlatformPrice is one leg of an arbitrage opportunity.
type PlatformPrice struct {
	Platform Platform      `json:"platform"`
	Market   UnifiedMarket `json:"market"`
	Price    float64       `json:"price"`
}

// ArbitrageOpportunity is a probability spread across platform-matched
// markets. PotentialProfit is illustrative only.
type ArbitrageOpportunity struct {
	ID              string          `json:"id"`
	EventName       string          `json:"eventName"`
	Markets         []PlatformPrice `json:"markets"`
	PriceDifference float64         `json:"priceDifference"`
	PotentialProfit float64         `json:"potentialProfit"`
	LowestPrice     float64         `json:"lowestPrice"`
	HighestPrice    float64         `json:"highestPrice"`
}
