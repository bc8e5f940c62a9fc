package domain

import "time"

// Platform identifies an upstream prediction-market venue.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformKalshi     Platform = "kalshi"
	PlatformManifold   Platform = "manifold"
	PlatformMetaculus  Platform = "metaculus"
)

// Platforms lists every supported platform in aggregation order.
var Platforms = []Platform{PlatformPolymarket, PlatformKalshi, PlatformManifold, PlatformMetaculus}

var platformNames = map[Platform]string{
	PlatformPolymarket: "Polymarket",
	PlatformKalshi:     "Kalshi",
	PlatformManifold:   "Manifold",
	PlatformMetaculus:  "Metaculus",
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	_, ok := platformNames[p]
	return ok
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	if n, ok := platformNames[p]; ok {
		return n
	}
	return string(p)
}

// ParsePlatform converts a string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", ErrUnknownPlatform
	}
	return p, nil
}

// Category is one of nine fixed topical labels inferred from question text.
type Category string

const (
	CategoryPolitics      Category = "politics"
	CategoryCrypto        Category = "crypto"
	CategorySports        Category = "sports"
	CategoryScience       Category = "science"
	CategoryEconomics     Category = "economics"
	CategoryEntertainment Category = "entertainment"
	CategoryTechnology    Category = "technology"
	CategoryWorld         Category = "world"
	CategoryOther         Category = "other"
)

// Categories lists all nine category labels.
var Categories = []Category{
	CategoryPolitics, CategoryCrypto, CategorySports, CategoryScience,
	CategoryEconomics, CategoryEntertainment, CategoryTechnology,
	CategoryWorld, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryPolitics:      "Politics",
	CategoryCrypto:        "Crypto",
	CategorySports:        "Sports",
	CategoryScience:       "Science",
	CategoryEconomics:     "Economics",
	CategoryEntertainment: "Entertainment",
	CategoryTechnology:    "Technology",
	CategoryWorld:         "World Events",
	CategoryOther:         "Other",
}

// Valid reports whether c is one of the nine labels.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// UnifiedMarket is the platform-agnostic market record every adapter produces.
// Values are treated as immutable once built.
type UnifiedMarket struct {
	ID          string     `json:"id"`
	Question    string     `json:"question"`
	Platform    Platform   `json:"platform"`
	Probability float64    `json:"probability"`
	Volume      float64    `json:"volume"`
	VolumeLabel string     `json:"volumeLabel"`
	Category    Category   `json:"category"`
	EndDate     *time.Time `json:"endDate"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	IsPlayMoney bool       `json:"isPlayMoney"`
	// HistoryID is the platform identifier used for price-history lookups
	// when it differs from the native market id.
	HistoryID string `json:"historyId,omitempty"`
}

// MarketID builds the conventional "{platform}-{nativeId}" identifier.
func MarketID(p Platform, nativeID string) string {
	return string(p) + "-" + nativeID
}

// SplitMarketID separates a unified id at the first "-" into platform and
// native id. Native ids may themselves contain dashes.
func SplitMarketID(id string) (Platform, string, error) {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			p, err := ParsePlatform(id[:i])
			if err != nil {
				return "", "", err
			}
			if i+1 >= len(id) {
				return "", "", ErrInvalidInput
			}
			return p, id[i+1:], nil
		}
	}
	return "", "", ErrUnknownPlatform
}

// PlatformStatus reports the outcome of the last fetch for one platform.
type PlatformStatus struct {
	Platform    Platform  `json:"platform"`
	Error       string    `json:"error,omitempty"`
	MarketCount int       `json:"marketCount"`
	FetchedAt   time.Time `json:"fetchedAt"`
	DurationMS  int64     `json:"durationMs"`
}

// Snapshot is one complete aggregation pass. Groups and Opportunities are
// derived from Markets and recomputed on every refresh.
type Snapshot struct {
	Markets       []UnifiedMarket        `json:"markets"`
	Statuses      []PlatformStatus       `json:"statuses"`
	Groups        []EventGroup           `json:"groups"`
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
	FetchedAt     time.Time              `json:"fetchedAt"`
}

// Market returns the market with the given id from the snapshot.
func (s *Snapshot) Market(id string) (UnifiedMarket, bool) {
	if s == nil {
		return UnifiedMarket{}, false
	}
	for _, m := range s.Markets {
		if m.ID == id {
			return m, true
		}
	}
	return UnifiedMarket{}, false
}
