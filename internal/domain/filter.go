package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// SortDirection orders a list ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// MarketSortField names the field markets are ordered by.
type MarketSortField string

const (
	SortVolume      MarketSortField = "volume"
	SortProbability MarketSortField = "probability"
	SortEndDate     MarketSortField = "endDate"
	SortPlatform    MarketSortField = "platform"
)

// EndingWithin limits markets by time remaining until their end date.
type EndingWithin string

const (
	EndingAny   EndingWithin = ""
	Ending24h   EndingWithin = "24h"
	EndingWeek  EndingWithin = "week"
	EndingMonth EndingWithin = "month"
)

func (e EndingWithin) hours() float64 {
	switch e {
	case Ending24h:
		return 24
	case EndingWeek:
		return 24 * 7
	case EndingMonth:
		return 24 * 30
	default:
		return math.Inf(1)
	}
}

// MarketFilter is the browse/filter state applied to a snapshot. Zero values
// disable the corresponding filter; nil bounds are open.
type MarketFilter struct {
	Platforms      []Platform
	Category       Category
	Search         string
	MinVolume      *float64
	MaxVolume      *float64
	MinProbability *float64
	MaxProbability *float64
	EndingWithin   EndingWithin
	SortBy         MarketSortField
	Direction      SortDirection
}

// Apply returns the markets that pass the filter, sorted when SortBy is set.
// The input slice is not modified. Markets without an end date always pass
// the EndingWithin filter.
func (f MarketFilter) Apply(markets []UnifiedMarket, now time.Time) []UnifiedMarket {
	var platforms map[Platform]bool
	if len(f.Platforms) > 0 {
		platforms = make(map[Platform]bool, len(f.Platforms))
		for _, p := range f.Platforms {
			platforms[p] = true
		}
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))
	limitHours := f.EndingWithin.hours()

	out := make([]UnifiedMarket, 0, len(markets))
	for _, m := range markets {
		if platforms != nil && !platforms[m.Platform] {
			continue
		}
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		if f.MinVolume != nil && m.Volume < *f.MinVolume {
			continue
		}
		if f.MaxVolume != nil && m.Volume > *f.MaxVolume {
			continue
		}
		if f.MinProbability != nil && m.Probability < *f.MinProbability {
			continue
		}
		if f.MaxProbability != nil && m.Probability > *f.MaxProbability {
			continue
		}
		if m.EndDate != nil && m.EndDate.Sub(now).Hours() > limitHours {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(m.Question), query) {
			continue
		}
		out = append(out, m)
	}

	if f.SortBy != "" {
		desc := f.Direction == SortDesc
		sort.SliceStable(out, func(i, j int) bool {
			c := compareMarkets(out[i], out[j], f.SortBy)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out
}

func compareMarkets(a, b UnifiedMarket, field MarketSortField) int {
	switch field {
	case SortVolume:
		return cmpFloat(a.Volume, b.Volume)
	case SortProbability:
		return cmpFloat(a.Probability, b.Probability)
	case SortEndDate:
		return cmpFloat(endUnix(a), endUnix(b))
	case SortPlatform:
		return strings.Compare(string(a.Platform), string(b.Platform))
	}
	return 0
}

// endUnix places markets without an end date after every dated market.
func endUnix(m UnifiedMarket) float64 {
	if m.EndDate == nil {
		return math.Inf(1)
	}
	return float64(m.EndDate.Unix())
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
