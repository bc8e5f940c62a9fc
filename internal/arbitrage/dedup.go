package arbitrage

import "github.com/alanyoungcy/predicthub/internal/domain"

// Dedup drops opportunities whose matched markets are all already covered
// by an earlier opportunity in the list. Given a list sorted by descending
// spread, the widest cluster for each event is kept. The input is not
// modified.
func Dedup(opps []domain.ArbitrageOpportunity) []domain.ArbitrageOpportunity {
	out := make([]domain.ArbitrageOpportunity, 0, len(opps))
	var kept []map[string]struct{}

	for _, opp := range opps {
		ids := make(map[string]struct{}, len(opp.Markets))
		for _, leg := range opp.Markets {
			ids[leg.Market.ID] = struct{}{}
		}

		covered := false
		for _, set := range kept {
			if subset(ids, set) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		kept = append(kept, ids)
		out = append(out, opp)
	}
	return out
}

func subset(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
