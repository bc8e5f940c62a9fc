// Package arbitrage detects probability spreads between markets on different
// platforms that describe the same event.
package arbitrage

import (
	"fmt"
	"sort"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
)

const (
	// SameEventThreshold is the fixed similarity two markets must exceed to
	// be treated as the same event. It is independent of the price cutoff.
	SameEventThreshold = 0.6

	// DefaultMinDifference is the price gap, in percentage points, used by
	// the dashboard.
	DefaultMinDifference = 3.0
)

// Detector finds cross-platform opportunities in a market snapshot.
type Detector struct {
	minDifference float64
	dedup         bool
	now           func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithDedup enables the overlap post-pass, see Dedup.
func WithDedup(enabled bool) Option {
	return func(d *Detector) { d.dedup = enabled }
}

// WithClock overrides the time source used for opportunity ids.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a Detector reporting spreads of at least
// minDifference percentage points.
func NewDetector(minDifference float64, opts ...Option) *Detector {
	d := &Detector{
		minDifference: minDifference,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindArbitrageOpportunities runs a default Detector over markets.
func FindArbitrageOpportunities(markets []domain.UnifiedMarket, minDifference float64) []domain.ArbitrageOpportunity {
	return NewDetector(minDifference).Find(markets)
}

// Find seeds a cluster at every market and collects each later market that
// is the same event on another platform. Seeds are not removed once matched,
// so one event can surface from several seeds. Clusters of two or more
// markets whose probability spread reaches the minimum difference are
// returned, largest spread first.
func (d *Detector) Find(markets []domain.UnifiedMarket) []domain.ArbitrageOpportunity {
	opportunities := []domain.ArbitrageOpportunity{}
	if len(markets) < 2 {
		return opportunities
	}

	terms := make([][]string, len(markets))
	for i, m := range markets {
		terms[i] = matching.ExtractKeyTerms(m.Question, matching.ArbitrageStopWords)
	}

	processed := make(map[string]struct{})
	stamp := d.now().UnixMilli()

	for i, seed := range markets {
		related := []domain.UnifiedMarket{seed}

		for j := i + 1; j < len(markets); j++ {
			key := pairKey(seed.ID, markets[j].ID)
			if _, ok := processed[key]; ok {
				continue
			}
			processed[key] = struct{}{}

			if sameEvent(seed, markets[j], terms[i], terms[j]) {
				related = append(related, markets[j])
			}
		}

		if len(related) < 2 {
			continue
		}

		legs := make([]domain.PlatformPrice, len(related))
		low, high := related[0].Probability, related[0].Probability
		for k, m := range related {
			legs[k] = domain.PlatformPrice{Platform: m.Platform, Market: m, Price: m.Probability}
			if m.Probability < low {
				low = m.Probability
			}
			if m.Probability > high {
				high = m.Probability
			}
		}

		diff := high - low
		if diff < d.minDifference {
			continue
		}
		opportunities = append(opportunities, domain.ArbitrageOpportunity{
			ID:              fmt.Sprintf("arb-%s-%d", seed.ID, stamp),
			EventName:       seed.Question,
			Markets:         legs,
			PriceDifference: diff,
			PotentialProfit: diff / 100 * 100,
			LowestPrice:     low,
			HighestPrice:    high,
		})
	}

	sort.SliceStable(opportunities, func(a, b int) bool {
		return opportunities[a].PriceDifference > opportunities[b].PriceDifference
	})

	if d.dedup {
		return Dedup(opportunities)
	}
	return opportunities
}

func sameEvent(a, b domain.UnifiedMarket, termsA, termsB []string) bool {
	if a.Platform == b.Platform || a.Category != b.Category {
		return false
	}
	return matching.Similarity(termsA, termsB) > SameEventThreshold
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
