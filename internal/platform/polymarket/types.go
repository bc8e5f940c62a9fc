package polymarket

import "github.com/alanyoungcy/predicthub/internal/platform/restclient"

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// apiMarket is a market as returned by the Gamma API. Several numeric and
// list fields arrive as strings, some as JSON-encoded arrays.
type apiMarket struct {
	ID            string                `json:"id"`
	Question      string                `json:"question"`
	ConditionID   string                `json:"conditionId"`
	Slug          string                `json:"slug"`
	Active        restclient.FlexBool   `json:"active"`
	Closed        restclient.FlexBool   `json:"closed"`
	OutcomePrices restclient.StringList `json:"outcomePrices"`
	ClobTokenIDs  restclient.StringList `json:"clobTokenIds"`
	Volume        restclient.FlexFloat  `json:"volume"`
	VolumeNum     restclient.FlexFloat  `json:"volumeNum"`
	EndDateISO    string                `json:"endDateIso"`
	EndDate       string                `json:"endDate"`
	Image         string                `json:"image"`
	Events        []apiEventRef         `json:"events"`
}

// apiEventRef is the parent event embedded in a market; its slug is the
// public permalink.
type apiEventRef struct {
	Slug   string `json:"slug"`
	Ticker string `json:"ticker"`
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// apiPriceHistory is the /prices-history response.
type apiPriceHistory struct {
	History []apiPricePoint `json:"history"`
}

// apiPricePoint is one sample: t in unix seconds, p in [0,1].
type apiPricePoint struct {
	T int64                `json:"t"`
	P restclient.FlexFloat `json:"p"`
}

// --------------------------------------------------------------------------
// Data API DTOs
// --------------------------------------------------------------------------

// apiPosition is an entry of the data API /positions response.
type apiPosition struct {
	Asset        string               `json:"asset"`
	ConditionID  string               `json:"conditionId"`
	Size         restclient.FlexFloat `json:"size"`
	AvgPrice     restclient.FlexFloat `json:"avgPrice"`
	CurPrice     restclient.FlexFloat `json:"curPrice"`
	InitialValue restclient.FlexFloat `json:"initialValue"`
	CurrentValue restclient.FlexFloat `json:"currentValue"`
	CashPnl      restclient.FlexFloat `json:"cashPnl"`
	PercentPnl   restclient.FlexFloat `json:"percentPnl"`
	Title        string               `json:"title"`
	Slug         string               `json:"slug"`
	EventSlug    string               `json:"eventSlug"`
	Outcome      string               `json:"outcome"`
	EndDate      string               `json:"endDate"`
	Redeemable   restclient.FlexBool  `json:"redeemable"`
}
