package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sendflowai/sendflow-go/pkg/core"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("RELEVANCE_STRATEGY", "")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Store.Provider)
	assert.Equal(t, "./sendflow.db", config.Store.Config["db_path"])
	assert.Equal(t, "keyword", config.Relevance.Strategy)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.False(t, config.Knowledge.CacheEnabled)
}

func TestLoadConfigFromEnv_Postgres(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_USER", "sendflow")
	t.Setenv("POSTGRES_DATABASE", "leads")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", config.Store.Provider)
	assert.Equal(t, "db.internal", config.Store.Config["host"])
	assert.Equal(t, 5433, config.Store.Config["port"])
	assert.Equal(t, "sendflow", config.Store.Config["user"])
	assert.Equal(t, "leads", config.Store.Config["db_name"])
}

func TestLoadConfigFromEnv_KnowledgeCache(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "fake")
	t.Setenv("KNOWLEDGE_CACHE_ENABLED", "true")
	t.Setenv("KNOWLEDGE_CACHE_TTL_SECONDS", "60")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.True(t, config.Knowledge.CacheEnabled)
	assert.Equal(t, 60, config.Knowledge.CacheTTLSeconds)
}

func TestConfig_Validate(t *testing.T) {
	valid := &core.Config{Store: core.StoreConfig{Provider: "fake"}}
	assert.NoError(t, valid.Validate())

	missingProvider := &core.Config{}
	assert.ErrorIs(t, missingProvider.Validate(), core.ErrInvalidConfig)

	unknownProvider := &core.Config{Store: core.StoreConfig{Provider: "cassandra"}}
	assert.ErrorIs(t, unknownProvider.Validate(), core.ErrInvalidConfig)

	embeddingWithoutKey := &core.Config{
		Store:     core.StoreConfig{Provider: "fake"},
		Relevance: core.RelevanceConfig{Strategy: "embedding"},
	}
	assert.ErrorIs(t, embeddingWithoutKey.Validate(), core.ErrInvalidConfig)

	embeddingWithKey := &core.Config{
		Store:     core.StoreConfig{Provider: "fake"},
		Relevance: core.RelevanceConfig{Strategy: "embedding"},
		Embedder:  core.EmbedderConfig{APIKey: "sk-test"},
	}
	assert.NoError(t, embeddingWithKey.Validate())

	unknownStrategy := &core.Config{
		Store:     core.StoreConfig{Provider: "fake"},
		Relevance: core.RelevanceConfig{Strategy: "regex"},
	}
	assert.ErrorIs(t, unknownStrategy.Validate(), core.ErrInvalidConfig)
}
