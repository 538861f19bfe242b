package models

import "time"

// Category classifies how quickly a query's correct answer goes stale.
type Category string

const (
	// CategoryFresh marks time-sensitive queries whose answers decay quickly.
	CategoryFresh Category = "fresh"
	// CategoryEvergreen marks durable queries whose answers stay valid.
	CategoryEvergreen Category = "evergreen"
)

// CacheEntry is one cached question/answer pair with its embedding.
//
// The ID is a content fingerprint of the normalized query and is only a
// storage key; lookups match by embedding similarity, never by ID.
type CacheEntry struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	Embedding  []float32 `json:"embedding"`
	Category   Category  `json:"category"`
	CreatedAt  int64     `json:"created_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

// Live reports whether the entry is still valid at the given time.
// The window is exclusive: an entry exactly at its TTL is expired.
func (e *CacheEntry) Live(now time.Time) bool {
	return now.Unix()-e.CreatedAt < e.TTLSeconds
}

// CacheStats reports the size of the cache corpus.
type CacheStats struct {
	Entries int64 `json:"entries"`
}
