// Package sqlite provides the SQLite implementation of the document store.
//
// SQLite is a lightweight, file-based database suitable for local development
// and small deployments. Structured payloads are stored as JSON strings in
// TEXT fields.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// Client implements storage.Store using SQLite as the backend.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string
}

// NewClient opens (and if necessary creates) the SQLite database at
// cfg.DBPath and ensures the table structure exists.
func NewClient(cfg *Config) (*Client, error) {
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w: %v", storage.ErrUnavailable, err)
	}

	client := &Client{db: db}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	memories := `
		CREATE TABLE IF NOT EXISTS lead_memories (
			id INTEGER PRIMARY KEY,
			org_id TEXT,
			lead_id TEXT NOT NULL,
			memory_type TEXT NOT NULL,
			content TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0.9,
			retrieval_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			last_accessed DATETIME NOT NULL
		)
	`
	if _, err := c.db.ExecContext(ctx, memories); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	knowledge := `
		CREATE TABLE IF NOT EXISTS knowledge_items (
			id INTEGER PRIMARY KEY,
			org_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			content_type TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`
	if _, err := c.db.ExecContext(ctx, knowledge); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_lead_memories_lead_type ON lead_memories(lead_id, memory_type)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_items_org_type ON knowledge_items(org_id, content_type)`,
	}
	for _, q := range indexes {
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}

	return nil
}

// InsertMemory inserts a memory record. Content is stored as a JSON string.
func (c *Client) InsertMemory(ctx context.Context, rec *storage.MemoryRecord) error {
	contentJSON, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("InsertMemory: %w", err)
	}

	query := `
		INSERT INTO lead_memories
		(id, org_id, lead_id, memory_type, content, confidence, retrieval_count, created_at, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		rec.ID,
		rec.OrgID,
		rec.LeadID,
		rec.Type,
		string(contentJSON),
		rec.Confidence,
		rec.RetrievalCount,
		rec.CreatedAt,
		rec.LastAccessed,
	)
	if err != nil {
		return fmt.Errorf("InsertMemory: %w: %v", storage.ErrUnavailable, err)
	}

	return nil
}

// FindMemories returns records for a lead, most recent first.
func (c *Client) FindMemories(ctx context.Context, q *storage.MemoryQuery) ([]*storage.MemoryRecord, error) {
	whereClause, args := buildMemoryWhere(q)

	query := fmt.Sprintf(`
		SELECT id, org_id, lead_id, memory_type, content, confidence,
		       retrieval_count, created_at, last_accessed
		FROM lead_memories
		%s
		ORDER BY created_at DESC, id DESC
		%s
	`, whereClause, limitClause(q.Limit, q.Offset))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FindMemories: %w: %v", storage.ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	records := []*storage.MemoryRecord{}
	for rows.Next() {
		rec, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("FindMemories: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindMemories: %w", err)
	}

	return records, nil
}

// TouchMemories bumps retrieval bookkeeping for the given record IDs.
func (c *Client) TouchMemories(ctx context.Context, ids []int64, accessedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE lead_memories
		SET retrieval_count = retrieval_count + 1, last_accessed = ?
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, accessedAt)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("TouchMemories: %w: %v", storage.ErrUnavailable, err)
	}

	return nil
}

// InsertKnowledge inserts a knowledge item.
func (c *Client) InsertKnowledge(ctx context.Context, item *storage.KnowledgeItem) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("InsertKnowledge: %w", err)
	}

	query := `
		INSERT INTO knowledge_items
		(id, org_id, title, content, content_type, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = c.db.ExecContext(ctx, query,
		item.ID,
		item.OrgID,
		item.Title,
		item.Content,
		item.Type,
		string(metadataJSON),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertKnowledge: %w: %v", storage.ErrUnavailable, err)
	}

	return nil
}

// FindKnowledge returns items for an organization, most recently updated first.
func (c *Client) FindKnowledge(ctx context.Context, q *storage.KnowledgeQuery) ([]*storage.KnowledgeItem, error) {
	whereClause, args := buildKnowledgeWhere(q)

	query := fmt.Sprintf(`
		SELECT id, org_id, title, content, content_type, metadata, created_at, updated_at
		FROM knowledge_items
		%s
		ORDER BY updated_at DESC, id DESC
		%s
	`, whereClause, limitClause(q.Limit, q.Offset))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("FindKnowledge: %w: %v", storage.ErrUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	items := []*storage.KnowledgeItem{}
	for rows.Next() {
		item, err := scanKnowledge(rows)
		if err != nil {
			return nil, fmt.Errorf("FindKnowledge: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindKnowledge: %w", err)
	}

	return items, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(s scanner) (*storage.MemoryRecord, error) {
	var rec storage.MemoryRecord
	var contentJSON string

	err := s.Scan(
		&rec.ID,
		&rec.OrgID,
		&rec.LeadID,
		&rec.Type,
		&contentJSON,
		&rec.Confidence,
		&rec.RetrievalCount,
		&rec.CreatedAt,
		&rec.LastAccessed,
	)
	if err != nil {
		return nil, err
	}

	if contentJSON != "" {
		if err := json.Unmarshal([]byte(contentJSON), &rec.Content); err != nil {
			return nil, err
		}
	}

	return &rec, nil
}

func scanKnowledge(s scanner) (*storage.KnowledgeItem, error) {
	var item storage.KnowledgeItem
	var metadataJSON sql.NullString

	err := s.Scan(
		&item.ID,
		&item.OrgID,
		&item.Title,
		&item.Content,
		&item.Type,
		&metadataJSON,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &item.Metadata); err != nil {
			return nil, err
		}
	}

	return &item, nil
}
