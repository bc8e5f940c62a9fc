// Package matching infers market categories, extracts key terms from market
// questions, scores term similarity and clusters markets into event groups.
// Everything here is pure computation over in-memory values.
package matching

import (
	"regexp"
	"strings"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

type categoryRule struct {
	category domain.Category
	pattern  *regexp.Regexp
}

// categoryRules are evaluated in order and the first match wins. A question
// mentioning both an election and bitcoin is politics because politics is
// tested first. Patterns match substrings, not whole words.
var categoryRules = []categoryRule{
	{domain.CategoryPolitics, regexp.MustCompile(`trump|biden|election|president|congress|senate|governor|democrat|republican|vote|polling|political`)},
	{domain.CategoryCrypto, regexp.MustCompile(`bitcoin|ethereum|crypto|btc|eth|token|blockchain|defi|nft`)},
	{domain.CategorySports, regexp.MustCompile(`nfl|nba|mlb|soccer|football|basketball|baseball|tennis|olympics|championship|super bowl|world cup`)},
	{domain.CategoryTechnology, regexp.MustCompile(`ai|artificial intelligence|gpt|openai|google|apple|microsoft|tech|software|startup`)},
	{domain.CategoryScience, regexp.MustCompile(`climate|science|research|study|nasa|space|physics|biology|medicine|vaccine|virus`)},
	{domain.CategoryEconomics, regexp.MustCompile(`gdp|inflation|fed|interest rate|stock|market|economy|recession|unemployment|trade`)},
	{domain.CategoryEntertainment, regexp.MustCompile(`movie|oscar|emmy|grammy|album|song|celebrity|netflix|disney|entertainment|tv|show`)},
	{domain.CategoryWorld, regexp.MustCompile(`war|ukraine|russia|china|country|international|global|nation|treaty`)},
}

// InferCategory maps a question and optional free-text tags to one of the
// nine category labels. It never fails; unmatched text is CategoryOther.
func InferCategory(question string, tags ...string) domain.Category {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	combined := strings.ToLower(question) + " " + strings.Join(lowered, " ")

	for _, rule := range categoryRules {
		if rule.pattern.MatchString(combined) {
			return rule.category
		}
	}
	return domain.CategoryOther
}
