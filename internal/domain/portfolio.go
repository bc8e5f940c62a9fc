package domain

import "time"

// Position is a holding on one platform, normalised for display. Prices
// are in percentage points, amounts in the platform's currency.
type Position struct {
	ID                string     `json:"id"`
	Platform          Platform   `json:"platform"`
	MarketQuestion    string     `json:"marketQuestion"`
	Outcome           string     `json:"outcome"`
	EntryPrice        float64    `json:"entryPrice"`
	CurrentPrice      float64    `json:"currentPrice"`
	Quantity          float64    `json:"quantity"`
	InvestmentAmount  float64    `json:"investmentAmount"`
	CurrentValue      float64    `json:"currentValue"`
	ProfitLoss        float64    `json:"profitLoss"`
	ProfitLossPercent float64    `json:"profitLossPercent"`
	CloseDate         *time.Time `json:"closeDate"`
	MarketURL         string     `json:"marketUrl"`
	IsActive          bool       `json:"isActive"`
}

// PortfolioSummary aggregates a set of positions.
type PortfolioSummary struct {
	TotalValue             float64   `json:"totalValue"`
	TotalInvested          float64   `json:"totalInvested"`
	TotalProfitLoss        float64   `json:"totalProfitLoss"`
	TotalProfitLossPercent float64   `json:"totalProfitLossPercent"`
	ActivePositions        int       `json:"activePositions"`
	ClosedPositions        int       `json:"closedPositions"`
	WinRate                float64   `json:"winRate"`
	BestPosition           *Position `json:"bestPosition"`
	WorstPosition          *Position `json:"worstPosition"`
}

// Position status filter values.
const (
	PositionStatusAll    = "all"
	PositionStatusActive = "active"
	PositionStatusClosed = "closed"
)

// Profitability filter values.
const (
	ProfitabilityAll    = "all"
	ProfitabilityProfit = "profit"
	ProfitabilityLoss   = "loss"
)

// Position sort keys.
const (
	SortByProfitLoss        = "profitLoss"
	SortByCurrentValue      = "currentValue"
	SortByCloseDate         = "closeDate"
	SortByProfitLossPercent = "profitLossPercent"
)

// PortfolioFilters narrows and orders a position list. An empty Platform
// means all platforms.
type PortfolioFilters struct {
	Platform      Platform      `json:"platform"`
	Status        string        `json:"status"`
	Profitability string        `json:"profitability"`
	SortBy        string        `json:"sortBy"`
	SortDirection SortDirection `json:"sortDirection"`
}
