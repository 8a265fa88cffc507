package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/sendflowai/sendflow-go/pkg/cadence"
	"github.com/sendflowai/sendflow-go/pkg/embedder"
	openaiembedder "github.com/sendflowai/sendflow-go/pkg/embedder/openai"
	"github.com/sendflowai/sendflow-go/pkg/knowledge"
	"github.com/sendflowai/sendflow-go/pkg/relevance"
	"github.com/sendflowai/sendflow-go/pkg/storage"
	"github.com/sendflowai/sendflow-go/pkg/storage/fake"
	"github.com/sendflowai/sendflow-go/pkg/storage/mysql"
	"github.com/sendflowai/sendflow-go/pkg/storage/postgres"
	"github.com/sendflowai/sendflow-go/pkg/storage/sqlite"
	"github.com/sendflowai/sendflow-go/pkg/synthesis"
)

const (
	// DefaultConfidence is assigned to stored memories when no explicit
	// confidence is given.
	DefaultConfidence = 0.9

	// DefaultRetrieveLimit bounds RetrieveMemories when no limit is given.
	DefaultRetrieveLimit = 5
)

// Client is the main entry point of the SendFlow SDK. It coordinates the
// document store, relevance strategy, context synthesis and the knowledge
// base.
//
// A Client is safe for concurrent use. Retrieval bookkeeping (retrieval
// counts and access times) is updated best effort without cross-request
// locking, so concurrent retrievals of the same record may lose counter
// increments.
type Client struct {
	config    *Config
	store     storage.Store
	strategy  relevance.Strategy
	embedder  embedder.Provider
	knowledge *knowledge.Service
	reducer   synthesis.Reducer
	planner   *cadence.Planner
	node      *snowflake.Node
	logger    *slog.Logger
}

// NewClient creates a new SendFlow client from the given configuration.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, NewServiceError("NewClient", fmt.Errorf("%w: config is required", ErrInvalidConfig))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := initStore(&config.Store)
	if err != nil {
		return nil, NewServiceError("NewClient", err)
	}

	return newClient(config, store)
}

// NewClientWithStore creates a client on top of an already constructed
// store. Intended for tests and embedding scenarios where the caller
// owns the store lifecycle.
func NewClientWithStore(config *Config, store storage.Store) (*Client, error) {
	if config == nil {
		config = &Config{Store: StoreConfig{Provider: "fake"}}
	}
	if store == nil {
		return nil, NewServiceError("NewClientWithStore", fmt.Errorf("%w: store is required", ErrInvalidConfig))
	}
	return newClient(config, store)
}

func newClient(config *Config, store storage.Store) (*Client, error) {
	logger := slog.Default().With("component", "sendflow")

	strategy, provider, err := initStrategy(config)
	if err != nil {
		store.Close()
		return nil, NewServiceError("NewClient", err)
	}

	kb, err := knowledge.NewService(store, strategy, &knowledge.Config{
		CacheEnabled:    config.Knowledge.CacheEnabled,
		CacheTTL:        time.Duration(config.Knowledge.CacheTTLSeconds) * time.Second,
		CacheMaxEntries: config.Knowledge.CacheMaxEntries,
	}, logger)
	if err != nil {
		store.Close()
		return nil, NewServiceError("NewClient", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		store.Close()
		return nil, NewServiceError("NewClient", err)
	}

	return &Client{
		config:    config,
		store:     store,
		strategy:  strategy,
		embedder:  provider,
		knowledge: kb,
		reducer:   synthesis.NewLatestWins(),
		planner:   cadence.NewPlanner(),
		node:      node,
		logger:    logger,
	}, nil
}

func initStore(cfg *StoreConfig) (storage.Store, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqlite.NewClient(&sqlite.Config{
			DBPath: getConfigString(cfg.Config, "db_path", "./sendflow.db"),
		})
	case "postgres":
		return postgres.NewClient(&postgres.Config{
			Host:     getConfigString(cfg.Config, "host", "localhost"),
			Port:     getConfigInt(cfg.Config, "port", 5432),
			User:     getConfigString(cfg.Config, "user", "postgres"),
			Password: getConfigString(cfg.Config, "password", ""),
			DBName:   getConfigString(cfg.Config, "db_name", "sendflow"),
			SSLMode:  getConfigString(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysql.NewClient(&mysql.Config{
			Host:     getConfigString(cfg.Config, "host", "127.0.0.1"),
			Port:     getConfigInt(cfg.Config, "port", 3306),
			User:     getConfigString(cfg.Config, "user", "root"),
			Password: getConfigString(cfg.Config, "password", ""),
			DBName:   getConfigString(cfg.Config, "db_name", "sendflow"),
		})
	case "fake":
		return fake.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

func initStrategy(config *Config) (relevance.Strategy, embedder.Provider, error) {
	switch config.Relevance.Strategy {
	case "", "keyword":
		return relevance.NewKeywordStrategy(), nil, nil
	case "embedding":
		provider, err := openaiembedder.NewClient(&openaiembedder.Config{
			APIKey:     config.Embedder.APIKey,
			Model:      config.Embedder.Model,
			BaseURL:    config.Embedder.BaseURL,
			Dimensions: config.Embedder.Dimensions,
		})
		if err != nil {
			return nil, nil, err
		}
		return relevance.NewEmbeddingStrategy(provider, config.Relevance.MinSimilarity), provider, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown relevance strategy %q", ErrInvalidConfig, config.Relevance.Strategy)
	}
}

// StoreMemory persists a typed memory for a lead and returns the stored
// record. The record's confidence defaults to 0.9 unless WithConfidence
// is given. Content is stored verbatim.
func (c *Client) StoreMemory(ctx context.Context, leadID string, memoryType MemoryType, content map[string]interface{}, opts ...StoreOption) (*MemoryRecord, error) {
	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if leadID == "" {
		return nil, NewServiceError("StoreMemory", fmt.Errorf("%w: lead id is required", ErrValidation))
	}
	if !memoryType.Valid() {
		return nil, NewServiceError("StoreMemory", fmt.Errorf("%w: unknown memory type %q", ErrValidation, memoryType))
	}

	confidence := DefaultConfidence
	if options.Confidence != nil {
		confidence = *options.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return nil, NewServiceError("StoreMemory", fmt.Errorf("%w: confidence %v outside [0, 1]", ErrValidation, confidence))
	}

	if content == nil {
		content = map[string]interface{}{}
	}

	now := time.Now().UTC()
	rec := &MemoryRecord{
		ID:             c.node.Generate().Int64(),
		OrgID:          options.OrgID,
		LeadID:         leadID,
		Type:           memoryType,
		Content:        content,
		Confidence:     confidence,
		RetrievalCount: 0,
		CreatedAt:      now,
		LastAccessed:   now,
	}

	if err := c.store.InsertMemory(ctx, toStorageMemory(rec)); err != nil {
		return nil, NewServiceError("StoreMemory", err)
	}

	c.logger.Debug("memory stored",
		"lead_id", leadID, "type", memoryType.String(), "confidence", confidence)

	return rec, nil
}

// RetrieveMemories returns memories for a lead, most recent first.
//
// When WithMemoryType is given, only that type is returned. Otherwise,
// when WithQuery is given, the query is classified and retrieval is
// biased toward the inferred type; if the biased fetch comes back empty
// the search falls back to all types. A lead with no records yields an
// empty slice, not an error.
//
// Each returned record has its retrieval count incremented and its access
// time refreshed as a side effect.
func (c *Client) RetrieveMemories(ctx context.Context, leadID string, opts ...RetrieveOption) ([]*MemoryRecord, error) {
	options := &RetrieveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if leadID == "" {
		return nil, NewServiceError("RetrieveMemories", fmt.Errorf("%w: lead id is required", ErrValidation))
	}
	if options.Type != "" && !options.Type.Valid() {
		return nil, NewServiceError("RetrieveMemories", fmt.Errorf("%w: unknown memory type %q", ErrValidation, options.Type))
	}

	limit := options.Limit
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	recs, err := c.fetchMemories(ctx, leadID, options.OrgID, options.Type, options.Query, limit)
	if err != nil {
		return nil, NewServiceError("RetrieveMemories", err)
	}

	c.touchMemories(ctx, recs)

	return fromStorageMemories(recs), nil
}

// fetchMemories runs the typed or query-biased find. It does not update
// retrieval bookkeeping.
func (c *Client) fetchMemories(ctx context.Context, leadID, orgID string, memoryType MemoryType, query string, limit int) ([]*storage.MemoryRecord, error) {
	effectiveType := string(memoryType)
	inferred := false

	if effectiveType == "" && query != "" {
		if label, ok := c.strategy.Classify(ctx, query, relevance.MemoryClasses()); ok {
			effectiveType = label
			inferred = true
		}
	}

	recs, err := c.store.FindMemories(ctx, &storage.MemoryQuery{
		LeadID: leadID,
		OrgID:  orgID,
		Type:   effectiveType,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	// An inferred bias that matched nothing falls back to an untyped
	// fetch so a misclassified query still surfaces results.
	if len(recs) == 0 && inferred {
		recs, err = c.store.FindMemories(ctx, &storage.MemoryQuery{
			LeadID: leadID,
			OrgID:  orgID,
			Limit:  limit,
		})
		if err != nil {
			return nil, err
		}
	}

	return recs, nil
}

// touchMemories bumps retrieval counts and access times for the given
// records, both in the store and on the in-memory copies. Store failures
// are logged and swallowed; retrieval bookkeeping is best effort.
func (c *Client) touchMemories(ctx context.Context, recs []*storage.MemoryRecord) {
	if len(recs) == 0 {
		return
	}

	now := time.Now().UTC()
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}

	if err := c.store.TouchMemories(ctx, ids, now); err != nil {
		c.logger.Warn("failed to update retrieval stats", "count", len(ids), "error", err)
		return
	}

	for _, rec := range recs {
		rec.RetrievalCount++
		rec.LastAccessed = now
	}
}

// AddKnowledge adds an item to the organization's knowledge base.
func (c *Client) AddKnowledge(ctx context.Context, orgID, title, content string, contentType ContentType, opts ...KnowledgeOption) (*KnowledgeItem, error) {
	options := &KnowledgeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if orgID == "" {
		return nil, NewServiceError("AddKnowledge", fmt.Errorf("%w: org id is required", ErrValidation))
	}
	if title == "" {
		return nil, NewServiceError("AddKnowledge", fmt.Errorf("%w: title is required", ErrValidation))
	}
	if !contentType.Valid() {
		return nil, NewServiceError("AddKnowledge", fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType))
	}

	now := time.Now().UTC()
	item := &storage.KnowledgeItem{
		ID:        c.node.Generate().Int64(),
		OrgID:     orgID,
		Title:     title,
		Content:   content,
		Type:      string(contentType),
		Metadata:  options.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.knowledge.Add(ctx, item); err != nil {
		return nil, NewServiceError("AddKnowledge", err)
	}

	return fromStorageKnowledge(item), nil
}

// SearchKnowledge searches the organization's knowledge base. When
// WithContentType is given only that type is searched; otherwise the
// query is classified to bias the search, falling back to all types when
// the bias yields nothing.
func (c *Client) SearchKnowledge(ctx context.Context, orgID, query string, opts ...SearchOption) ([]*KnowledgeItem, error) {
	options := &SearchOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if orgID == "" {
		return nil, NewServiceError("SearchKnowledge", fmt.Errorf("%w: org id is required", ErrValidation))
	}
	if options.Type != "" && !options.Type.Valid() {
		return nil, NewServiceError("SearchKnowledge", fmt.Errorf("%w: unknown content type %q", ErrValidation, options.Type))
	}

	items, err := c.knowledge.Search(ctx, orgID, query, string(options.Type), options.Limit)
	if err != nil {
		return nil, NewServiceError("SearchKnowledge", err)
	}

	return fromStorageKnowledgeItems(items), nil
}

// Close releases the client's resources.
func (c *Client) Close() error {
	c.knowledge.Close()

	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			c.logger.Warn("failed to close embedder", "error", err)
		}
	}

	if err := c.store.Close(); err != nil {
		return NewServiceError("Close", err)
	}
	return nil
}

func getConfigString(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

func getConfigInt(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}
