package main

import (
	"fmt"

	"github.com/semcache-ai/semcache/pkg/config"
	"github.com/semcache-ai/semcache/pkg/store"
	qdrantstore "github.com/semcache-ai/semcache/pkg/store/qdrant"
	redisstore "github.com/semcache-ai/semcache/pkg/store/redis"
	sqlitestore "github.com/semcache-ai/semcache/pkg/store/sqlite"
)

// openStore builds the configured persistence backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return sqlitestore.New(cfg.Store.Path)
	case "redis":
		return redisstore.New(cfg.Store.RedisURL)
	case "qdrant":
		return qdrantstore.New(cfg.Store.QdrantHost, cfg.Store.QdrantPort, cfg.Store.QdrantCollection, cfg.OpenAI.Dimensions)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
