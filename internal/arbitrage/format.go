package arbitrage

import (
	"fmt"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// Format renders a one-line trade suggestion for an opportunity, or "" when
// the extremal legs cannot be found.
func Format(opp domain.ArbitrageOpportunity) string {
	var low, high *domain.PlatformPrice
	for i := range opp.Markets {
		leg := &opp.Markets[i]
		if low == nil && leg.Price == opp.LowestPrice {
			low = leg
		}
		if high == nil && leg.Price == opp.HighestPrice {
			high = leg
		}
	}
	if low == nil || high == nil {
		return ""
	}
	return fmt.Sprintf("Buy YES on %s at %.1f%%, Sell YES on %s at %.1f%%",
		low.Platform, low.Price, high.Platform, high.Price)
}
