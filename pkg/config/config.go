package config

import (
	"fmt"
	"os"
	"time"

	"github.com/semcache-ai/semcache/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config holds all semcache configuration.
type Config struct {
	Listen string       `yaml:"listen"`
	Store  StoreConfig  `yaml:"store"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Cache  CacheConfig  `yaml:"cache"`
}

// StoreConfig selects and configures the persistence backend.
// Backend is "sqlite" (default), "redis", or "qdrant".
type StoreConfig struct {
	Backend          string `yaml:"backend"`
	Path             string `yaml:"path"`
	RedisURL         string `yaml:"redis_url"`
	QdrantHost       string `yaml:"qdrant_host"`
	QdrantPort       int    `yaml:"qdrant_port"`
	QdrantCollection string `yaml:"qdrant_collection"`
}

// OpenAIConfig configures the embedding and generation collaborators.
// APIKeyEnv names the environment variable holding the key, so config
// files never carry secrets.
type OpenAIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKeyEnv      string        `yaml:"api_key_env"`
	EmbeddingModel string        `yaml:"embedding_model"`
	ChatModel      string        `yaml:"chat_model"`
	Dimensions     int           `yaml:"dimensions"`
	Timeout        time.Duration `yaml:"timeout"`
}

// CacheConfig controls admission policy: the similarity threshold and
// the per-category TTLs.
type CacheConfig struct {
	Threshold  float64       `yaml:"threshold"`
	FreshTTL   time.Duration `yaml:"fresh_ttl"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	ScanWindow int           `yaml:"scan_window"`
	TopK       int           `yaml:"top_k"`
}

// TTLFor returns the validity window assigned to entries of the given
// category at creation time.
func (c CacheConfig) TTLFor(category models.Category) time.Duration {
	if category == models.CategoryFresh {
		return c.FreshTTL
	}
	return c.DefaultTTL
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":4000",
		Store: StoreConfig{
			Backend:          "sqlite",
			Path:             "semcache.db",
			RedisURL:         "redis://localhost:6379",
			QdrantHost:       "localhost",
			QdrantPort:       6334,
			QdrantCollection: "semcache",
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com",
			APIKeyEnv:      "OPENAI_API_KEY",
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
			Dimensions:     1536,
			Timeout:        30 * time.Second,
		},
		Cache: CacheConfig{
			Threshold:  0.7,
			FreshTTL:   3 * time.Hour,
			DefaultTTL: 7 * 24 * time.Hour,
			ScanWindow: 100,
			TopK:       3,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "redis", "qdrant":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Cache.Threshold < 0 || c.Cache.Threshold > 1 {
		return fmt.Errorf("cache threshold must be in [0,1], got %v", c.Cache.Threshold)
	}
	if c.Cache.FreshTTL <= 0 || c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Cache.ScanWindow <= 0 {
		return fmt.Errorf("scan window must be positive, got %d", c.Cache.ScanWindow)
	}
	if c.Cache.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Cache.TopK)
	}
	if c.OpenAI.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.OpenAI.Dimensions)
	}
	return nil
}
