package matching

import (
	"regexp"
	"strings"
)

// StopWords is a set of tokens dropped during term extraction.
type StopWords map[string]struct{}

// Has reports whether word is a stop word.
func (s StopWords) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Words returns the members of the set in no particular order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	return out
}

func newStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// ArbitrageStopWords is used when matching markets for arbitrage. It is a
// subset of GroupingStopWords; "win" and friends are kept as terms here.
var ArbitrageStopWords = newStopWords(
	"will", "the", "be", "to", "in", "on", "at", "by", "for", "of", "a", "an",
	"is", "are", "or", "and", "yes", "no", "before", "after", "during", "when",
	"what", "how", "who", "where", "which",
)

// GroupingStopWords is used when clustering markets into event groups and
// naming those groups.
var GroupingStopWords = newStopWords(
	"will", "the", "be", "to", "in", "on", "at", "by", "for", "of", "a", "an",
	"is", "are", "or", "and", "yes", "no", "before", "after", "during", "when",
	"what", "how", "who", "where", "which", "this", "that", "than", "more",
	"less", "if", "has", "have", "do", "does", "did", "win", "winning", "wins",
)

var (
	nonTermChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, strips everything outside [a-z0-9] and
// whitespace, and collapses whitespace runs to single spaces.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = nonTermChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractKeyTerms returns the meaningful tokens of text in source order.
// Tokens of two characters or fewer and stop words are dropped; duplicates
// are kept because group naming counts them.
func ExtractKeyTerms(text string, stop StopWords) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	var terms []string
	for _, word := range strings.Split(normalized, " ") {
		if len(word) <= 2 || stop.Has(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// Similarity is the Jaccard index of the two term lists taken as sets.
// It is 0 when either list is empty.
func Similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	shared := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}
