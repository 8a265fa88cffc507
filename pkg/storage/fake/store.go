// Package fake provides a process-local, in-memory implementation of the
// document store.
//
// It exists for tests and local development: it is selected explicitly by
// configuration (provider "fake") or constructed directly, never as a
// fallback branch inside a real backend.
//
// Concurrency: protected by an RWMutex. Returned records are copies, so
// callers can mutate results without racing the store.
package fake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// Store implements storage.Store with in-memory maps.
type Store struct {
	mu        sync.RWMutex
	memories  map[int64]*storage.MemoryRecord
	knowledge map[int64]*storage.KnowledgeItem
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		memories:  make(map[int64]*storage.MemoryRecord),
		knowledge: make(map[int64]*storage.KnowledgeItem),
	}
}

// InsertMemory persists a new memory record.
func (s *Store) InsertMemory(_ context.Context, rec *storage.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[rec.ID] = copyMemory(rec)
	return nil
}

// FindMemories returns records matching the query, most recent first.
func (s *Store) FindMemories(_ context.Context, q *storage.MemoryQuery) ([]*storage.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []*storage.MemoryRecord{}
	for _, rec := range s.memories {
		if q.LeadID != "" && rec.LeadID != q.LeadID {
			continue
		}
		if q.OrgID != "" && rec.OrgID != q.OrgID {
			continue
		}
		if q.Type != "" && rec.Type != q.Type {
			continue
		}
		matches = append(matches, copyMemory(rec))
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	return paginateMemories(matches, q.Limit, q.Offset), nil
}

// TouchMemories bumps retrieval bookkeeping for the given record IDs.
func (s *Store) TouchMemories(_ context.Context, ids []int64, accessedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if rec, ok := s.memories[id]; ok {
			rec.RetrievalCount++
			rec.LastAccessed = accessedAt
		}
	}
	return nil
}

// InsertKnowledge persists a new knowledge item.
func (s *Store) InsertKnowledge(_ context.Context, item *storage.KnowledgeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.knowledge[item.ID] = copyKnowledge(item)
	return nil
}

// FindKnowledge returns items matching the query, most recently updated first.
func (s *Store) FindKnowledge(_ context.Context, q *storage.KnowledgeQuery) ([]*storage.KnowledgeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []*storage.KnowledgeItem{}
	for _, item := range s.knowledge {
		if q.OrgID != "" && item.OrgID != q.OrgID {
			continue
		}
		if q.Type != "" && item.Type != q.Type {
			continue
		}
		matches = append(matches, copyKnowledge(item))
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	return paginateKnowledge(matches, q.Limit, q.Offset), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func paginateMemories(recs []*storage.MemoryRecord, limit, offset int) []*storage.MemoryRecord {
	if offset > 0 {
		if offset >= len(recs) {
			return []*storage.MemoryRecord{}
		}
		recs = recs[offset:]
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func paginateKnowledge(items []*storage.KnowledgeItem, limit, offset int) []*storage.KnowledgeItem {
	if offset > 0 {
		if offset >= len(items) {
			return []*storage.KnowledgeItem{}
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func copyMemory(rec *storage.MemoryRecord) *storage.MemoryRecord {
	cp := *rec
	if rec.Content != nil {
		cp.Content = make(map[string]interface{}, len(rec.Content))
		for k, v := range rec.Content {
			cp.Content[k] = v
		}
	}
	return &cp
}

func copyKnowledge(item *storage.KnowledgeItem) *storage.KnowledgeItem {
	cp := *item
	if item.Metadata != nil {
		cp.Metadata = make(map[string]interface{}, len(item.Metadata))
		for k, v := range item.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
