// Package store defines the persistence contract for cache entries.
//
// Backends live in subpackages: sqlite (local file), redis (the shared
// substrate), and qdrant (native vector index).
package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/semcache-ai/semcache/pkg/models"
	"github.com/semcache-ai/semcache/pkg/similarity"
)

// Store is a durable mapping from entry ID to cache entry.
//
// Put is an idempotent upsert; write failures must be surfaced to the
// caller. Scan returns a bounded window of the corpus in an unspecified
// order; once the corpus exceeds the limit, callers must not assume
// they see every entry. Stores never evict expired entries on their
// own; liveness is the reader's problem.
type Store interface {
	Put(ctx context.Context, entry models.CacheEntry) error
	Scan(ctx context.Context, limit int) ([]models.CacheEntry, error)
	Stats(ctx context.Context) (models.CacheStats, error)
	// Purge deletes entries, either all of them or only expired ones,
	// and returns how many were removed. This is an operator action, never
	// part of the read path.
	Purge(ctx context.Context, expiredOnly bool) (int64, error)
	Close() error
}

// Searcher is an optional capability for backends that maintain their
// own nearest-neighbor index. The engine type-asserts for it and skips
// the scan-and-rank path when present. Implementations must return
// live matches ordered by ascending cosine distance.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]similarity.Match, error)
}

// Fingerprint returns the deterministic storage key for a query: the
// sha-256 hex digest of the lower-cased, trimmed text. It is only a
// storage key; matching is similarity-based, never identity-based.
func Fingerprint(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(normalized)))
}
