package kalshi

import "github.com/alanyoungcy/predicthub/internal/platform/restclient"

// --------------------------------------------------------------------------
// Kalshi API DTOs. Prices are integer cents (0-100), volumes are contracts.
// --------------------------------------------------------------------------

type apiEvent struct {
	EventTicker       string `json:"event_ticker"`
	SeriesTicker      string `json:"series_ticker"`
	Title             string `json:"title"`
	SubTitle          string `json:"sub_title"`
	Category          string `json:"category"`
	MutuallyExclusive bool   `json:"mutually_exclusive"`
}

type apiEventsResponse struct {
	Events []apiEvent `json:"events"`
	Cursor string     `json:"cursor"`
}

type apiMarket struct {
	Ticker         string  `json:"ticker"`
	EventTicker    string  `json:"event_ticker"`
	Title          string  `json:"title"`
	Subtitle       string  `json:"subtitle"`
	Status         string  `json:"status"`
	Category       string  `json:"category"`
	YesBid         float64 `json:"yes_bid"`
	YesAsk         float64 `json:"yes_ask"`
	LastPrice      float64 `json:"last_price"`
	Volume         float64 `json:"volume"`
	CloseTime      string  `json:"close_time"`
	ExpirationTime string  `json:"expiration_time"`
	Result         string  `json:"result"`
}

type apiMarketsResponse struct {
	Markets []apiMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

type apiMarketResponse struct {
	Market apiMarket `json:"market"`
}

type apiHistoryPoint struct {
	Ts       int64                `json:"ts"`
	YesPrice restclient.FlexFloat `json:"yes_price"`
	Price    restclient.FlexFloat `json:"price"`
}

type apiHistoryResponse struct {
	History []apiHistoryPoint `json:"history"`
}

// apiPosition is an entry of /portfolio/positions. A negative Position is a
// NO holding; MarketExposure is the cost basis in cents.
type apiPosition struct {
	Ticker         string  `json:"ticker"`
	Position       float64 `json:"position"`
	MarketExposure float64 `json:"market_exposure"`
	RealizedPnl    float64 `json:"realized_pnl"`
	TotalTraded    float64 `json:"total_traded"`
}

type apiPositionsResponse struct {
	MarketPositions []apiPosition `json:"market_positions"`
	Cursor          string        `json:"cursor"`
}
