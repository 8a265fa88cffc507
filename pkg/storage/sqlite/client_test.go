package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendflowai/sendflow-go/pkg/storage"
	sqliteStore "github.com/sendflowai/sendflow-go/pkg/storage/sqlite"
)

func setupSQLiteTest(t *testing.T) (storage.Store, func()) {
	testDBPath := filepath.Join(t.TempDir(), "test_sendflow.db")

	store, err := sqliteStore.NewClient(&sqliteStore.Config{
		DBPath: testDBPath,
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		_ = store.Close()
		_ = os.Remove(testDBPath)
	}

	return store, cleanup
}

func TestSQLiteClient_InsertAndFindMemory(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rec := &storage.MemoryRecord{
		ID:           100,
		OrgID:        "org-1",
		LeadID:       "lead-1",
		Type:         "factual",
		Content:      map[string]interface{}{"budget": map[string]interface{}{"max": 450000.0}},
		Confidence:   0.9,
		CreatedAt:    now,
		LastAccessed: now,
	}

	require.NoError(t, store.InsertMemory(ctx, rec))

	found, err := store.FindMemories(ctx, &storage.MemoryQuery{LeadID: "lead-1"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, "org-1", got.OrgID)
	assert.Equal(t, "factual", got.Type)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, 0, got.RetrievalCount)

	// JSON round-trip: nested numbers come back as float64.
	budget, ok := got.Content["budget"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 450000.0, budget["max"])
}

func TestSQLiteClient_FindMemoriesOrderAndFilter(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []*storage.MemoryRecord{
		{ID: 1, LeadID: "lead-1", Type: "factual", Content: map[string]interface{}{"n": 1.0}, Confidence: 0.9, CreatedAt: base, LastAccessed: base},
		{ID: 2, LeadID: "lead-1", Type: "emotional", Content: map[string]interface{}{"n": 2.0}, Confidence: 0.9, CreatedAt: base.Add(time.Minute), LastAccessed: base},
		{ID: 3, LeadID: "lead-1", Type: "factual", Content: map[string]interface{}{"n": 3.0}, Confidence: 0.9, CreatedAt: base.Add(2 * time.Minute), LastAccessed: base},
		{ID: 4, LeadID: "lead-2", Type: "factual", Content: map[string]interface{}{"n": 4.0}, Confidence: 0.9, CreatedAt: base, LastAccessed: base},
	}
	for _, rec := range records {
		require.NoError(t, store.InsertMemory(ctx, rec))
	}

	all, err := store.FindMemories(ctx, &storage.MemoryQuery{LeadID: "lead-1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, int64(1), all[2].ID)

	factual, err := store.FindMemories(ctx, &storage.MemoryQuery{LeadID: "lead-1", Type: "factual"})
	require.NoError(t, err)
	require.Len(t, factual, 2)
	assert.Equal(t, int64(3), factual[0].ID)

	limited, err := store.FindMemories(ctx, &storage.MemoryQuery{LeadID: "lead-1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(3), limited[0].ID)
}

func TestSQLiteClient_FindMemoriesEmptyLead(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	found, err := store.FindMemories(context.Background(), &storage.MemoryQuery{LeadID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestSQLiteClient_TouchMemories(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, id := range []int64{1, 2} {
		require.NoError(t, store.InsertMemory(ctx, &storage.MemoryRecord{
			ID: id, LeadID: "lead-1", Type: "factual",
			Content: map[string]interface{}{}, Confidence: 0.9,
			CreatedAt: base, LastAccessed: base,
		}))
	}

	touchedAt := base.Add(time.Hour)
	require.NoError(t, store.TouchMemories(ctx, []int64{1, 2}, touchedAt))
	require.NoError(t, store.TouchMemories(ctx, []int64{1}, touchedAt.Add(time.Minute)))

	found, err := store.FindMemories(ctx, &storage.MemoryQuery{LeadID: "lead-1"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	counts := map[int64]int{}
	for _, rec := range found {
		counts[rec.ID] = rec.RetrievalCount
	}
	assert.Equal(t, 2, counts[1])
	assert.Equal(t, 1, counts[2])
}

func TestSQLiteClient_TouchMemoriesEmptyIDs(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	assert.NoError(t, store.TouchMemories(context.Background(), nil, time.Now()))
}

func TestSQLiteClient_Knowledge(t *testing.T) {
	store, cleanup := setupSQLiteTest(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	items := []*storage.KnowledgeItem{
		{ID: 1, OrgID: "org-1", Title: "Buyer guide", Content: "...", Type: "document", CreatedAt: base, UpdatedAt: base},
		{ID: 2, OrgID: "org-1", Title: "Rate objection script", Content: "...", Type: "script", CreatedAt: base, UpdatedAt: base.Add(time.Minute)},
		{ID: 3, OrgID: "org-2", Title: "Other org FAQ", Content: "...", Type: "faq", CreatedAt: base, UpdatedAt: base},
	}
	for _, item := range items {
		require.NoError(t, store.InsertKnowledge(ctx, item))
	}

	found, err := store.FindKnowledge(ctx, &storage.KnowledgeQuery{OrgID: "org-1"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Rate objection script", found[0].Title)

	scripts, err := store.FindKnowledge(ctx, &storage.KnowledgeQuery{OrgID: "org-1", Type: "script"})
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, int64(2), scripts[0].ID)
}
