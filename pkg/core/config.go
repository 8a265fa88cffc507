package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a SendFlow client.
type Config struct {
	// Store contains document store configuration.
	Store StoreConfig `json:"store"`

	// Relevance contains relevance strategy configuration.
	Relevance RelevanceConfig `json:"relevance"`

	// Embedder contains embedding provider configuration. Only consulted
	// when the relevance strategy is "embedding".
	Embedder EmbedderConfig `json:"embedder,omitempty"`

	// Knowledge contains knowledge base configuration.
	Knowledge KnowledgeConfig `json:"knowledge"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server"`
}

// StoreConfig contains configuration for the document store.
//
// Supported providers: sqlite, postgres, mysql, fake. The fake provider is
// an in-memory store for tests and local development.
type StoreConfig struct {
	// Provider is the store provider name.
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// RelevanceConfig selects the relevance strategy for query bias.
type RelevanceConfig struct {
	// Strategy is "keyword" (default) or "embedding".
	Strategy string `json:"strategy"`

	// MinSimilarity is the cosine similarity floor for the embedding
	// strategy. Zero selects the built-in default.
	MinSimilarity float64 `json:"min_similarity,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
type EmbedderConfig struct {
	// Provider is the embedding provider name. Currently only "openai".
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name.
	Model string `json:"model,omitempty"`

	// BaseURL overrides the API base URL (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the embedding vector dimension.
	Dimensions int `json:"dimensions,omitempty"`
}

// KnowledgeConfig contains knowledge base configuration.
type KnowledgeConfig struct {
	// CacheEnabled turns on the knowledge search result cache.
	CacheEnabled bool `json:"cache_enabled"`

	// CacheTTLSeconds is the cache entry lifetime in seconds.
	CacheTTLSeconds int `json:"cache_ttl_seconds,omitempty"`

	// CacheMaxEntries bounds the number of cached result sets.
	CacheMaxEntries int64 `json:"cache_max_entries,omitempty"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function searches for a .env file (up to 5 directory levels up),
// loads it if found, then reads:
//
//   - DATABASE_PROVIDER (sqlite, postgres, mysql, fake; default sqlite)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//   - RELEVANCE_STRATEGY (keyword, embedding; default keyword)
//   - EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL, EMBEDDING_DIMS
//   - KNOWLEDGE_CACHE_ENABLED, KNOWLEDGE_CACHE_TTL_SECONDS
//   - HTTP_ADDR (default :8080)
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := findEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storeConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./sendflow.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storeConfig = map[string]interface{}{
			"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":     port,
			"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password": os.Getenv("POSTGRES_PASSWORD"),
			"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "sendflow"),
			"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storeConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "sendflow"),
		}
	case "fake":
		// No provider-specific configuration.
	}

	cacheTTL, _ := strconv.Atoi(getEnvOrDefault("KNOWLEDGE_CACHE_TTL_SECONDS", "30"))
	dims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMS", "1536"))

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		Relevance: RelevanceConfig{
			Strategy: getEnvOrDefault("RELEVANCE_STRATEGY", "keyword"),
		},
		Embedder: EmbedderConfig{
			Provider:   getEnvOrDefault("EMBEDDING_PROVIDER", "openai"),
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		},
		Knowledge: KnowledgeConfig{
			CacheEnabled:    os.Getenv("KNOWLEDGE_CACHE_ENABLED") == "true",
			CacheTTLSeconds: cacheTTL,
		},
		Server: ServerConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
	}

	return config, nil
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewServiceError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewServiceError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Store.Provider {
	case "sqlite", "postgres", "mysql", "fake":
	case "":
		return NewServiceError("Validate", fmt.Errorf("%w: store provider is required", ErrInvalidConfig))
	default:
		return NewServiceError("Validate", fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, c.Store.Provider))
	}

	switch c.Relevance.Strategy {
	case "", "keyword":
	case "embedding":
		if c.Embedder.APIKey == "" {
			return NewServiceError("Validate", fmt.Errorf("%w: embedding strategy requires an embedder api key", ErrInvalidConfig))
		}
	default:
		return NewServiceError("Validate", fmt.Errorf("%w: unknown relevance strategy %q", ErrInvalidConfig, c.Relevance.Strategy))
	}

	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// findEnvFile searches the current directory and then up to 5 parent
// directories for a .env file.
func findEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
