package relevance

import (
	"context"
	"math"

	"github.com/sendflowai/sendflow-go/pkg/embedder"
)

// defaultMinSimilarity is the cosine similarity below which a query is
// treated as matching no class.
const defaultMinSimilarity = 0.2

// EmbeddingStrategy classifies queries by cosine similarity between the
// query embedding and each class description embedding.
//
// It occupies the slot real vector search will fill; on any embedding
// failure it degrades to "no classification" rather than erroring, because
// relevance is a hint, not a filter.
type EmbeddingStrategy struct {
	provider      embedder.Provider
	minSimilarity float64
}

// NewEmbeddingStrategy creates an embedding classifier over the given
// provider. minSimilarity <= 0 selects the default threshold.
func NewEmbeddingStrategy(provider embedder.Provider, minSimilarity float64) *EmbeddingStrategy {
	if minSimilarity <= 0 {
		minSimilarity = defaultMinSimilarity
	}
	return &EmbeddingStrategy{provider: provider, minSimilarity: minSimilarity}
}

// Classify embeds the query and every class description in one batch and
// returns the most similar class. Ties break toward the earliest class in
// the slice, which is a fixed order, so results are deterministic.
func (s *EmbeddingStrategy) Classify(ctx context.Context, query string, classes []Class) (string, bool) {
	if query == "" || len(classes) == 0 {
		return "", false
	}

	texts := make([]string, 0, len(classes)+1)
	texts = append(texts, query)
	for _, class := range classes {
		texts = append(texts, class.Description)
	}

	embeddings, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil || len(embeddings) != len(texts) {
		return "", false
	}

	queryVec := embeddings[0]
	bestIdx := -1
	bestSim := s.minSimilarity
	for i := range classes {
		sim := cosineSimilarity(queryVec, embeddings[i+1])
		if sim > bestSim {
			bestIdx = i
			bestSim = sim
		}
	}

	if bestIdx < 0 {
		return "", false
	}
	return classes[bestIdx].Label, true
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
