// Package storage provides interfaces and types for document storage backends.
//
// It defines the Store interface that all backends (SQLite, PostgreSQL,
// MySQL, and the in-memory fake) must satisfy, along with the record types
// and query shapes used by them.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the backing database cannot be reached. Backends
// wrap connection and query failures with it so callers can distinguish
// infrastructure failures from domain errors.
var ErrUnavailable = errors.New("store unavailable")

// MemoryRecord is a lead memory as persisted by a backend.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.MemoryRecord structure.
type MemoryRecord struct {
	// ID is the unique identifier of the record.
	ID int64

	// OrgID identifies the organization the lead belongs to.
	OrgID string

	// LeadID identifies the lead this memory belongs to.
	LeadID string

	// Type is the memory type (factual, emotional, strategic, contextual).
	Type string

	// Content is the open structured payload, persisted as JSON.
	Content map[string]interface{}

	// Confidence is the accuracy belief for this record, in [0,1].
	Confidence float64

	// RetrievalCount is the number of times the record has been retrieved.
	RetrievalCount int

	// CreatedAt is the immutable creation timestamp.
	CreatedAt time.Time

	// LastAccessed is updated on every successful retrieval.
	LastAccessed time.Time
}

// KnowledgeItem is an organization-scoped content item as persisted by a
// backend. It mirrors the core.KnowledgeItem structure.
type KnowledgeItem struct {
	ID        int64
	OrgID     string
	Title     string
	Content   string
	Type      string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemoryQuery describes a find-by-filter over memory records.
type MemoryQuery struct {
	// LeadID filters records to a single lead (required).
	LeadID string

	// OrgID filters records to a single organization (optional).
	OrgID string

	// Type filters records to a single memory type (optional).
	Type string

	// Limit bounds the result count. Zero means no bound.
	Limit int

	// Offset sets the number of results to skip (for pagination).
	Offset int
}

// KnowledgeQuery describes a find-by-filter over knowledge items.
type KnowledgeQuery struct {
	// OrgID filters items to a single organization (required).
	OrgID string

	// Type filters items to a single content type (optional).
	Type string

	// Limit bounds the result count. Zero means no bound.
	Limit int

	// Offset sets the number of results to skip (for pagination).
	Offset int
}

// Store defines the interface for document storage backends.
//
// Memory records are append-only: there is no update or delete operation.
// The only mutation is TouchMemories, which bumps retrieval bookkeeping.
type Store interface {
	// InsertMemory persists a new memory record. It never overwrites: the
	// caller assigns a fresh ID before inserting.
	InsertMemory(ctx context.Context, rec *MemoryRecord) error

	// FindMemories returns records matching the query, most recent first
	// (created_at descending, then id descending for a stable order).
	// A lead with no records yields an empty slice, not an error.
	FindMemories(ctx context.Context, q *MemoryQuery) ([]*MemoryRecord, error)

	// TouchMemories increments retrieval_count by one and sets last_accessed
	// for each of the given record IDs. The increment is best-effort: lost
	// updates under concurrent retrievals are acceptable.
	TouchMemories(ctx context.Context, ids []int64, accessedAt time.Time) error

	// InsertKnowledge persists a new knowledge item.
	InsertKnowledge(ctx context.Context, item *KnowledgeItem) error

	// FindKnowledge returns items matching the query, most recently updated
	// first (updated_at descending, then id descending).
	FindKnowledge(ctx context.Context, q *KnowledgeQuery) ([]*KnowledgeItem, error)

	// Close closes the store and releases resources.
	Close() error
}
