// Package relevance implements best-effort relevance matching for free-text
// queries.
//
// It serves two callers with one routine: memory retrieval uses Classify to
// bias a query toward the most relevant memory type, and knowledge search
// uses Classify for category bias plus Score for result ranking. Matching is
// never correctness-critical: a query that matches nothing simply produces
// no bias and no filtering.
//
// The Strategy interface is the seam where real semantic search plugs in;
// the keyword classifier is the default, the embedding classifier is the
// vector-backed alternative.
package relevance

import (
	"context"
	"strings"
	"unicode"
)

// Class is one candidate label for query classification.
type Class struct {
	// Label is the class name returned by Classify.
	Label string

	// Keywords are lexical triggers used by the keyword strategy. Entries
	// may be word fragments ("negotiat") or phrases ("interest rate").
	Keywords []string

	// Description is a prose rendering of the class used by the embedding
	// strategy.
	Description string
}

// Strategy classifies a free-text query against candidate classes.
//
// Classify returns the best-matching label and true, or false when no class
// is a convincing match. Implementations must be deterministic: the same
// query and classes always produce the same answer.
type Strategy interface {
	Classify(ctx context.Context, query string, classes []Class) (string, bool)
}

// MemoryClasses returns the memory-type classes with the real-estate
// vocabulary that biases retrieval queries.
func MemoryClasses() []Class {
	return []Class{
		{
			Label: "factual",
			Keywords: []string{
				"budget", "price", "bedroom", "bathroom", "square", "location",
				"pre-approval", "preapproval", "mortgage", "down payment", "requirement",
			},
			Description: "verifiable facts about the lead: budget, price range, property requirements, financing status",
		},
		{
			Label: "emotional",
			Keywords: []string{
				"rapport", "feel", "feeling", "excited", "worried", "anxious",
				"trust", "frustrated", "relationship", "sentiment",
			},
			Description: "rapport and sentiment: how the lead feels about the process and the relationship",
		},
		{
			Label: "strategic",
			Keywords: []string{
				"next step", "strategy", "approach", "negotiat", "offer",
				"follow up", "follow-up", "timeline", "closing",
			},
			Description: "strategy for advancing the deal: next steps, negotiation posture, closing plan",
		},
		{
			Label: "contextual",
			Keywords: []string{
				"market", "neighborhood", "school", "interest rate", "inventory",
				"competing", "season", "relocation", "situation",
			},
			Description: "situational context: market conditions, neighborhood factors, external pressures",
		},
	}
}

// KnowledgeClasses returns the content-type classes for knowledge search.
func KnowledgeClasses() []Class {
	return []Class{
		{
			Label: "document",
			Keywords: []string{
				"guide", "contract", "listing", "disclosure", "checklist", "report",
			},
			Description: "reference documents: guides, contracts, listings, disclosures",
		},
		{
			Label: "script",
			Keywords: []string{
				"script", "call", "objection", "pitch", "voicemail", "say",
			},
			Description: "call scripts and objection handling language",
		},
		{
			Label: "faq",
			Keywords: []string{
				"faq", "question", "how do", "what is", "why", "answer",
			},
			Description: "frequently asked questions and their answers",
		},
	}
}

// Score rates how well text matches a query, as the fraction of query tokens
// present in the text. It returns a value in [0,1]; an empty query scores 0.
func Score(query, text string) float64 {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}

	textTokens := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		textTokens[tok] = struct{}{}
	}

	hits := 0
	for _, tok := range queryTokens {
		if _, ok := textTokens[tok]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(queryTokens))
}

// tokenize lowercases s and splits it on non-alphanumeric runes.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
