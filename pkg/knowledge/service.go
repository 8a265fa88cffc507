// Package knowledge implements organization-scoped knowledge base lookup.
//
// Search shares the relevance routine with memory retrieval: the query
// biases toward a content type (keyword-triggered category bias) and ranks
// results lexically, degrading to the unfiltered set when nothing matches.
// Because the knowledge base is read-mostly, results are served through a
// short-TTL cache.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/sendflowai/sendflow-go/pkg/relevance"
	"github.com/sendflowai/sendflow-go/pkg/storage"
)

// DefaultSearchLimit bounds the result count when the caller gives none.
const DefaultSearchLimit = 5

// overfetchFactor controls how many candidates are pulled for ranking
// relative to the requested limit.
const overfetchFactor = 4

// Config contains knowledge service configuration.
type Config struct {
	// CacheEnabled turns the result cache on.
	CacheEnabled bool

	// CacheTTL is how long a cached result set stays valid.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the number of cached result sets.
	CacheMaxEntries int64
}

// Service answers knowledge base searches over a document store.
type Service struct {
	store    storage.Store
	strategy relevance.Strategy
	cache    *ristretto.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a knowledge service. A nil cfg disables caching.
func NewService(store storage.Store, strategy relevance.Strategy, cfg *Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:    store,
		strategy: strategy,
		logger:   logger,
	}

	if cfg != nil && cfg.CacheEnabled {
		maxEntries := cfg.CacheMaxEntries
		if maxEntries <= 0 {
			maxEntries = 1024
		}
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: maxEntries * 10,
			MaxCost:     maxEntries,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("NewService: %w", err)
		}
		s.cache = cache
		s.cacheTTL = cfg.CacheTTL
		if s.cacheTTL <= 0 {
			s.cacheTTL = 30 * time.Second
		}
	}

	return s, nil
}

// Add inserts a knowledge item and drops the cache, since any cached result
// set may now be stale.
func (s *Service) Add(ctx context.Context, item *storage.KnowledgeItem) error {
	if err := s.store.InsertKnowledge(ctx, item); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Clear()
	}
	return nil
}

// Search returns up to limit items for the organization, most relevant
// first.
//
// contentType, when non-empty, is an explicit filter. Otherwise the query
// may bias toward a content type via the relevance strategy; a bias that
// yields nothing falls back to the unfiltered set. An organization with no
// items yields an empty slice, never an error.
func (s *Service) Search(ctx context.Context, orgID, query, contentType string, limit int) ([]*storage.KnowledgeItem, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	cacheKey := fmt.Sprintf("%s\x00%s\x00%s\x00%d", orgID, contentType, query, limit)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			if items, ok := cached.([]*storage.KnowledgeItem); ok {
				return copyItems(items), nil
			}
		}
	}

	effectiveType := contentType
	inferred := false
	if effectiveType == "" && query != "" {
		if label, ok := s.strategy.Classify(ctx, query, relevance.KnowledgeClasses()); ok {
			effectiveType = label
			inferred = true
		}
	}

	items, err := s.fetch(ctx, orgID, effectiveType, limit)
	if err != nil {
		return nil, err
	}

	// An inferred bias is a hint, not a filter: when it matches nothing,
	// degrade to the unfiltered set.
	if len(items) == 0 && inferred {
		items, err = s.fetch(ctx, orgID, "", limit)
		if err != nil {
			return nil, err
		}
	}

	items = rank(items, query, limit)

	// Cache a private copy: the returned slice and items belong to the
	// caller, who may mutate them.
	if s.cache != nil {
		s.cache.SetWithTTL(cacheKey, copyItems(items), 1, s.cacheTTL)
	}

	return items, nil
}

// Close releases the cache. The store is owned by the caller.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func (s *Service) fetch(ctx context.Context, orgID, contentType string, limit int) ([]*storage.KnowledgeItem, error) {
	return s.store.FindKnowledge(ctx, &storage.KnowledgeQuery{
		OrgID: orgID,
		Type:  contentType,
		Limit: limit * overfetchFactor,
	})
}

// copyItems clones items so cached result sets stay isolated from caller
// mutations.
func copyItems(items []*storage.KnowledgeItem) []*storage.KnowledgeItem {
	out := make([]*storage.KnowledgeItem, 0, len(items))
	for _, item := range items {
		cp := *item
		if item.Metadata != nil {
			cp.Metadata = make(map[string]interface{}, len(item.Metadata))
			for k, v := range item.Metadata {
				cp.Metadata[k] = v
			}
		}
		out = append(out, &cp)
	}
	return out
}

// rank orders items by lexical match against the query and truncates to
// limit. The sort is stable, so equally scored items keep the store's
// most-recently-updated order.
func rank(items []*storage.KnowledgeItem, query string, limit int) []*storage.KnowledgeItem {
	if query != "" {
		scores := make(map[int64]float64, len(items))
		for _, item := range items {
			scores[item.ID] = relevance.Score(query, item.Title+" "+item.Content)
		}
		sort.SliceStable(items, func(i, j int) bool {
			return scores[items[i].ID] > scores[items[j].ID]
		})
	}

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
