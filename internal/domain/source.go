package domain

import "context"

// MarketSource lists the current open markets of one platform.
type MarketSource interface {
	Platform() Platform
	FetchMarkets(ctx context.Context) ([]UnifiedMarket, error)
}

// MarketLookup fetches a single market by its platform-native id.
type MarketLookup interface {
	GetMarket(ctx context.Context, nativeID string) (UnifiedMarket, error)
}

// HistorySource returns price history for a platform-native id, oldest
// first.
type HistorySource interface {
	History(ctx context.Context, nativeID string, r HistoryRange) ([]HistoryPoint, error)
}

// PositionSource lists the holdings of an account. The meaning of account
// is platform specific (wallet address, username, or empty for the
// configured API key).
type PositionSource interface {
	Positions(ctx context.Context, account string) ([]Position, error)
}

// PlatformAdapter is implemented by adapters of platforms that expose
// user portfolios.
type PlatformAdapter interface {
	MarketSource
	MarketLookup
	HistorySource
	PositionSource
}
