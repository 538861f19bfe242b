// Package sqlite persists cache entries in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/semcache-ai/semcache/pkg/models"
)

// Store implements store.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	embedding BLOB NOT NULL,
	category TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	ttl_seconds INTEGER NOT NULL
);
`

// New opens (and if needed creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Store{db: db}, nil
}

// Put stores an entry, replacing any previous entry with the same ID.
func (s *Store) Put(ctx context.Context, entry models.CacheEntry) error {
	embedding, err := json.Marshal(entry.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (id, query, response, embedding, category, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, entry.Response, embedding, string(entry.Category), entry.CreatedAt, entry.TTLSeconds,
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Scan returns up to limit entries. Rows whose embedding fails to
// decode are skipped, not fatal.
func (s *Store) Scan(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, response, embedding, category, created_at, ttl_seconds
		 FROM cache_entries LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var e models.CacheEntry
		var embedding []byte
		var category string
		if err := rows.Scan(&e.ID, &e.Query, &e.Response, &embedding, &category, &e.CreatedAt, &e.TTLSeconds); err != nil {
			return nil, fmt.Errorf("cache scan row: %w", err)
		}
		if err := json.Unmarshal(embedding, &e.Embedding); err != nil {
			log.Printf("skipping entry %s: malformed embedding: %v", e.ID, err)
			continue
		}
		e.Category = models.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}
	return entries, nil
}

// Stats returns the number of stored entries, expired ones included.
func (s *Store) Stats(ctx context.Context) (models.CacheStats, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&count)
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{Entries: count}, nil
}

// Purge removes entries. If expiredOnly is true, only entries past
// their TTL are removed.
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	var res sql.Result
	var err error
	if expiredOnly {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE ? - created_at >= ttl_seconds`, time.Now().Unix())
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	}
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
