// Package synthesis reduces a lead's per-type memory history to a single
// current belief per type.
//
// Reduction contracts, regardless of policy:
//   - an empty record set reduces to an empty (non-nil) map
//   - exactly one record reduces to its content verbatim
//   - ties on created_at break deterministically by record id, never randomly
package synthesis

import (
	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// Reducer collapses one memory type's records into a single content map.
type Reducer interface {
	Reduce(records []*storage.MemoryRecord) map[string]interface{}
}

// LatestWins is the default reduction policy: the record with the maximum
// created_at wins outright; its content is returned verbatim. No merging or
// averaging across records.
type LatestWins struct{}

// NewLatestWins creates the most-recent-wins reducer.
func NewLatestWins() *LatestWins {
	return &LatestWins{}
}

// Reduce returns the content of the most recent record. Identical
// created_at values break toward the higher record id (the later
// allocation, since ids are snowflakes).
func (LatestWins) Reduce(records []*storage.MemoryRecord) map[string]interface{} {
	if len(records) == 0 {
		return map[string]interface{}{}
	}

	latest := records[0]
	for _, rec := range records[1:] {
		if rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
			continue
		}
		if rec.CreatedAt.Equal(latest.CreatedAt) && rec.ID > latest.ID {
			latest = rec
		}
	}

	if latest.Content == nil {
		return map[string]interface{}{}
	}
	return latest.Content
}

// ConfidenceWeighted is a richer reduction policy: it unions keys across all
// records, and for keys present in several records the value from the record
// with the highest confidence wins (created_at, then id, break ties).
//
// It preserves the reduction contracts above: a single record still reduces
// to its content verbatim.
type ConfidenceWeighted struct{}

// NewConfidenceWeighted creates the confidence-weighted union reducer.
func NewConfidenceWeighted() *ConfidenceWeighted {
	return &ConfidenceWeighted{}
}

// Reduce unions record contents, resolving key conflicts by confidence.
func (ConfidenceWeighted) Reduce(records []*storage.MemoryRecord) map[string]interface{} {
	if len(records) == 0 {
		return map[string]interface{}{}
	}
	if len(records) == 1 {
		if records[0].Content == nil {
			return map[string]interface{}{}
		}
		return records[0].Content
	}

	merged := map[string]interface{}{}
	winners := map[string]*storage.MemoryRecord{}
	for _, rec := range records {
		for key, value := range rec.Content {
			current, ok := winners[key]
			if !ok || outranks(rec, current) {
				winners[key] = rec
				merged[key] = value
			}
		}
	}

	return merged
}

// outranks reports whether a beats b for key ownership: higher confidence
// first, then newer created_at, then higher id.
func outranks(a, b *storage.MemoryRecord) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
