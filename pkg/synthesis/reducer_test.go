package synthesis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sendflowai/sendflow-go/pkg/storage"
	"github.com/sendflowai/sendflow-go/pkg/synthesis"
)

func record(id int64, createdAt time.Time, confidence float64, content map[string]interface{}) *storage.MemoryRecord {
	return &storage.MemoryRecord{
		ID:         id,
		LeadID:     "lead-1",
		Type:       "factual",
		Content:    content,
		Confidence: confidence,
		CreatedAt:  createdAt,
	}
}

func TestLatestWins_Empty(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	result := reducer.Reduce(nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)

	result = reducer.Reduce([]*storage.MemoryRecord{})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestLatestWins_SingleRecordVerbatim(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	content := map[string]interface{}{
		"budget":   map[string]interface{}{"max": 450000},
		"bedrooms": 3,
	}
	result := reducer.Reduce([]*storage.MemoryRecord{
		record(1, time.Now(), 0.9, content),
	})

	assert.Equal(t, content, result)
}

func TestLatestWins_MostRecentWins(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	result := reducer.Reduce([]*storage.MemoryRecord{
		record(1, t1, 0.9, map[string]interface{}{"budget": 450000, "bedrooms": 3}),
		record(2, t2, 0.9, map[string]interface{}{"budget": 500000}),
	})

	// The newest record wins outright; older keys are not merged in.
	assert.Equal(t, map[string]interface{}{"budget": 500000}, result)
}

func TestLatestWins_OrderIndependent(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	forward := reducer.Reduce([]*storage.MemoryRecord{
		record(1, t1, 0.9, map[string]interface{}{"budget": 450000}),
		record(2, t2, 0.9, map[string]interface{}{"budget": 500000}),
	})
	reversed := reducer.Reduce([]*storage.MemoryRecord{
		record(2, t2, 0.9, map[string]interface{}{"budget": 500000}),
		record(1, t1, 0.9, map[string]interface{}{"budget": 450000}),
	})

	assert.Equal(t, forward, reversed)
}

func TestLatestWins_TimestampTieBreaksOnID(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	result := reducer.Reduce([]*storage.MemoryRecord{
		record(10, at, 0.9, map[string]interface{}{"status": "touring"}),
		record(11, at, 0.9, map[string]interface{}{"status": "negotiating"}),
	})

	// IDs are allocation ordered, so the higher ID is the later write.
	assert.Equal(t, "negotiating", result["status"])
}

func TestLatestWins_NilContent(t *testing.T) {
	reducer := synthesis.NewLatestWins()

	result := reducer.Reduce([]*storage.MemoryRecord{
		record(1, time.Now(), 0.9, nil),
	})

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestConfidenceWeighted_KeyUnion(t *testing.T) {
	reducer := synthesis.NewConfidenceWeighted()

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	result := reducer.Reduce([]*storage.MemoryRecord{
		record(1, t1, 0.9, map[string]interface{}{"budget": 450000, "bedrooms": 3}),
		record(2, t2, 0.5, map[string]interface{}{"budget": 500000, "garage": true}),
	})

	// Higher confidence beats recency for contested keys.
	assert.Equal(t, 450000, result["budget"])
	assert.Equal(t, 3, result["bedrooms"])
	assert.Equal(t, true, result["garage"])
}

func TestConfidenceWeighted_EqualConfidenceFallsBackToRecency(t *testing.T) {
	reducer := synthesis.NewConfidenceWeighted()

	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	result := reducer.Reduce([]*storage.MemoryRecord{
		record(1, t1, 0.9, map[string]interface{}{"budget": 450000}),
		record(2, t2, 0.9, map[string]interface{}{"budget": 500000}),
	})

	assert.Equal(t, 500000, result["budget"])
}
