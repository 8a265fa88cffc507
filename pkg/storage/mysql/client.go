// Package mysql provides the MySQL implementation of the document store.
// Structured payloads are stored in JSON columns.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// Client implements storage.Store using MySQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains MySQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// NewClient connects to MySQL and ensures the table structure exists.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w: %v", storage.ErrUnavailable, err)
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
			id BIGINT PRIMARY KEY,
			org_id VARCHAR(128),
			lead_id VARCHAR(128) NOT NULL,
			memory_type VARCHAR(32) NOT NULL,
			content JSON NOT NULL,
			confidence DOUBLE NOT NULL DEFAULT 0.9,
			retrieval_count INT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			last_accessed DATETIME(6) NOT NULL,
			INDEX idx_lead_type (lead_id, memory_type)
		)
	`
	if _, err := c.db.ExecContext(ctx, memories); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	knowledge := `
		CREATE TABLE IF NOT EXISTS knowledge_items (
			id BIGINT PRIMARY KEY,
			org_id VARCHAR(128) NOT NULL,
			title TEXT NOT NULL,
			content LONGTEXT NOT NULL,
			content_type VARCHAR(32) NOT NULL,
			metadata JSON,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_org_type (org_id, content_type)
		)
	`
	if _, err := c.db.ExecContext(ctx, knowledge); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// InsertMemory inserts a memory record.
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

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(s scanner) (*storage.MemoryRecord, error) {
	var rec storage.MemoryRecord
	var contentJSON []byte

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

	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &rec.Content); err != nil {
			return nil, err
		}
	}

	return &rec, nil
}

func scanKnowledge(s scanner) (*storage.KnowledgeItem, error) {
	var item storage.KnowledgeItem
	var metadataJSON []byte

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

	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		if err := json.Unmarshal(metadataJSON, &item.Metadata); err != nil {
			return nil, err
		}
	}

	return &item, nil
}
