package relevance

import (
	"context"
	"strings"
)

// KeywordStrategy classifies queries by counting keyword hits per class.
//
// It is the default strategy: cheap, dependency-free, and a stand-in for
// real semantic search. Matching is case-insensitive substring containment,
// so fragment keywords ("negotiat") catch word variants.
type KeywordStrategy struct{}

// NewKeywordStrategy creates a keyword classifier.
func NewKeywordStrategy() *KeywordStrategy {
	return &KeywordStrategy{}
}

// Classify returns the class with the most keyword hits in the query.
// Ties break toward the lexicographically smallest label so results are
// deterministic. Zero hits anywhere means no classification.
func (s *KeywordStrategy) Classify(_ context.Context, query string, classes []Class) (string, bool) {
	normalized := strings.ToLower(query)
	if normalized == "" {
		return "", false
	}

	bestLabel := ""
	bestHits := 0
	for _, class := range classes {
		hits := 0
		for _, kw := range class.Keywords {
			if strings.Contains(normalized, kw) {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && class.Label < bestLabel) {
			bestLabel = class.Label
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return "", false
	}
	return bestLabel, true
}
