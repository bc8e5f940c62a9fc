package matching

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// DefaultGroupThreshold is the similarity cutoff used when callers have no
// preference. The dashboard runs with a looser 0.4.
const DefaultGroupThreshold = 0.5

const maxNameTerms = 5

// GroupMarketsByEvent partitions markets into event groups with a greedy
// single pass: each unassigned market seeds a group and absorbs every later
// unassigned market of the same category whose similarity to the seed is at
// least threshold. The result depends on input order. Groups are returned
// by descending total volume.
func GroupMarketsByEvent(markets []domain.UnifiedMarket, threshold float64) []domain.EventGroup {
	if len(markets) == 0 {
		return []domain.EventGroup{}
	}

	terms := make([][]string, len(markets))
	for i, m := range markets {
		terms[i] = ExtractKeyTerms(m.Question, GroupingStopWords)
	}

	assigned := make([]bool, len(markets))
	groups := make([]domain.EventGroup, 0, len(markets))

	for i, seed := range markets {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []domain.UnifiedMarket{seed}

		for j := i + 1; j < len(markets); j++ {
			if assigned[j] || markets[j].Category != seed.Category {
				continue
			}
			if Similarity(terms[i], terms[j]) >= threshold {
				members = append(members, markets[j])
				assigned[j] = true
			}
		}

		if len(members) == 1 {
			groups = append(groups, domain.EventGroup{
				ID:             "single-" + seed.ID,
				Name:           seed.Question,
				Markets:        members,
				TotalVolume:    seed.Volume,
				AvgProbability: seed.Probability,
				Platforms:      []domain.Platform{seed.Platform},
				Category:       seed.Category,
			})
			continue
		}

		var totalVolume, probSum float64
		for _, m := range members {
			totalVolume += m.Volume
			probSum += m.Probability
		}
		platforms := distinctPlatforms(members)
		name := extractGroupName(members)
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].Volume > members[b].Volume
		})

		groups = append(groups, domain.EventGroup{
			ID:             "group-" + seed.ID,
			Name:           name,
			Markets:        members,
			TotalVolume:    totalVolume,
			AvgProbability: probSum / float64(len(members)),
			Platforms:      platforms,
			Category:       seed.Category,
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalVolume > groups[b].TotalVolume
	})
	return groups
}

func distinctPlatforms(markets []domain.UnifiedMarket) []domain.Platform {
	seen := make(map[domain.Platform]bool, len(markets))
	var out []domain.Platform
	for _, m := range markets {
		if !seen[m.Platform] {
			seen[m.Platform] = true
			out = append(out, m.Platform)
		}
	}
	return out
}

type termCount struct {
	term  string
	count int
}

// extractGroupName builds a label from terms that occur at least
// ceil(n/2) times across the member questions. Up to five terms are kept,
// most frequent first with ties in first-seen order. When no term qualifies
// the shortest member question is used verbatim.
func extractGroupName(markets []domain.UnifiedMarket) string {
	switch len(markets) {
	case 0:
		return "Unknown"
	case 1:
		return markets[0].Question
	}

	index := make(map[string]int)
	var counts []termCount
	for _, m := range markets {
		for _, t := range ExtractKeyTerms(m.Question, GroupingStopWords) {
			if i, ok := index[t]; ok {
				counts[i].count++
				continue
			}
			index[t] = len(counts)
			counts = append(counts, termCount{term: t, count: 1})
		}
	}

	minCount := int(math.Ceil(float64(len(markets)) * 0.5))
	common := counts[:0:0]
	for _, tc := range counts {
		if tc.count >= minCount {
			common = append(common, tc)
		}
	}

	if len(common) == 0 {
		shortest := markets[0].Question
		for _, m := range markets[1:] {
			if utf8.RuneCountInString(m.Question) < utf8.RuneCountInString(shortest) {
				shortest = m.Question
			}
		}
		return shortest
	}

	sort.SliceStable(common, func(a, b int) bool {
		return common[a].count > common[b].count
	})
	if len(common) > maxNameTerms {
		common = common[:maxNameTerms]
	}

	words := make([]string, len(common))
	for i, tc := range common {
		words[i] = strings.ToUpper(tc.term[:1]) + tc.term[1:]
	}
	return strings.Join(words, " ")
}

// MultiMarketGroups returns the groups holding two or more markets.
func MultiMarketGroups(groups []domain.EventGroup) []domain.EventGroup {
	out := make([]domain.EventGroup, 0, len(groups))
	for _, g := range groups {
		if g.IsCrossListed() {
			out = append(out, g)
		}
	}
	return out
}

// UngroupedMarkets returns the sole market of every singleton group.
func UngroupedMarkets(groups []domain.EventGroup) []domain.UnifiedMarket {
	out := make([]domain.UnifiedMarket, 0, len(groups))
	for _, g := range groups {
		if len(g.Markets) == 1 {
			out = append(out, g.Markets[0])
		}
	}
	return out
}
