// Package redis persists cache entries as JSON documents in Redis,
// the same substrate the service shares with other instances.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/semcache-ai/semcache/pkg/models"
)

const keyPrefix = "cache:"

// Store implements store.Store backed by Redis. Entries are plain JSON
// values under cache:<id>; no Redis-side expiry is set, since liveness
// is evaluated at read time.
type Store struct {
	client *redis.Client
}

// New connects to Redis at the given URL (redis://host:port/db).
func New(url string) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Put stores an entry, replacing any previous entry with the same ID.
func (s *Store) Put(ctx context.Context, entry models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+entry.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Scan returns up to limit entries. Values that fail to decode are
// skipped, not fatal.
func (s *Store) Scan(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	keys, err := s.scanKeys(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache scan fetch: %w", err)
	}

	entries := make([]models.CacheEntry, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue // deleted between SCAN and MGET
		}
		var e models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Printf("skipping entry %s: malformed document: %v", keys[i], err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// scanKeys walks the keyspace cursor until limit keys are collected or
// the cursor wraps. Pass limit <= 0 to collect every key.
func (s *Store) scanKeys(ctx context.Context, limit int) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 256).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 || (limit > 0 && len(keys) >= limit) {
			break
		}
	}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

// Stats returns the number of stored entries, expired ones included.
func (s *Store) Stats(ctx context.Context) (models.CacheStats, error) {
	keys, err := s.scanKeys(ctx, 0)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{Entries: int64(len(keys))}, nil
}

// Purge removes entries. If expiredOnly is true, only entries past
// their TTL are removed.
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	keys, err := s.scanKeys(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if !expiredOnly {
		n, err := s.client.Del(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("cache purge: %w", err)
		}
		return n, nil
	}

	now := time.Now()
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache purge fetch: %w", err)
	}

	var expired []string
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// Corrupt documents will never match again; sweep them too.
			expired = append(expired, keys[i])
			continue
		}
		if !e.Live(now) {
			expired = append(expired, keys[i])
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, expired...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return n, nil
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
