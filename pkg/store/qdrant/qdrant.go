// Package qdrant persists cache entries in a Qdrant collection.
//
// Unlike the scan-based backends, Qdrant maintains its own cosine
// index, so this store also implements store.Searcher and the engine
// ranks server-side instead of scanning a bounded window.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/semcache-ai/semcache/pkg/models"
	"github.com/semcache-ai/semcache/pkg/similarity"
)

// Store implements store.Store and store.Searcher backed by Qdrant.
type Store struct {
	client     *qdrant.Client
	collection string
	dimensions int
}

// purgeWindow bounds how many points one purge pass inspects.
const purgeWindow = 1024

// New connects to Qdrant and ensures the collection exists with a
// cosine-distance vector index of the given dimensionality.
func New(host string, port int, collection string, dimensions int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Store{client: client, collection: collection, dimensions: dimensions}
	if err := s.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

// pointID derives a deterministic Qdrant UUID from the entry
// fingerprint, so re-caching the same query overwrites its point.
func pointID(fingerprint string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

// Put stores an entry, replacing any previous point with the same ID.
func (s *Store) Put(ctx context.Context, entry models.CacheEntry) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(pointID(entry.ID)),
				Vectors: qdrant.NewVectorsDense(entry.Embedding),
				Payload: qdrant.NewValueMap(map[string]any{
					"id":          entry.ID,
					"query":       entry.Query,
					"response":    entry.Response,
					"category":    string(entry.Category),
					"created_at":  entry.CreatedAt,
					"ttl_seconds": entry.TTLSeconds,
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Search returns up to k live matches ordered by ascending cosine
// distance, ranked by the Qdrant index.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]similarity.Match, error) {
	// Over-fetch so expired points do not starve the result.
	limit := uint64(k * 4)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(embedding),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	now := time.Now()
	matches := make([]similarity.Match, 0, k)
	for _, p := range points {
		entry, ok := entryFromPayload(p.Payload, p.Vectors)
		if !ok {
			continue
		}
		if !entry.Live(now) {
			continue
		}
		matches = append(matches, similarity.Match{
			Entry:    entry,
			Distance: 1 - float64(p.Score),
		})
		if len(matches) == k {
			break
		}
	}
	return matches, nil
}

// Scan returns up to limit entries in index order.
func (s *Store) Scan(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}

	entries := make([]models.CacheEntry, 0, len(points))
	for _, p := range points {
		if entry, ok := entryFromPayload(p.Payload, p.Vectors); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Stats returns the number of stored points, expired ones included.
func (s *Store) Stats(ctx context.Context) (models.CacheStats, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{Entries: int64(count)}, nil
}

// Purge removes entries. A full purge deletes every point; an expired
// purge inspects one scroll window per call, so very large corpora may
// need repeated runs.
func (s *Store) Purge(ctx context.Context, expiredOnly bool) (int64, error) {
	if !expiredOnly {
		stats, err := s.Stats(ctx)
		if err != nil {
			return 0, err
		}
		_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: s.collection,
			Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
		})
		if err != nil {
			return 0, fmt.Errorf("cache purge: %w", err)
		}
		return stats.Entries, nil
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(purgeWindow)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return 0, fmt.Errorf("cache purge scan: %w", err)
	}

	now := time.Now()
	var expired []*qdrant.PointId
	for _, p := range points {
		entry, ok := entryFromPayload(p.Payload, nil)
		if !ok || !entry.Live(now) {
			expired = append(expired, p.Id)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(expired...),
	})
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return int64(len(expired)), nil
}

// Close releases the Qdrant connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// entryFromPayload rebuilds a CacheEntry from a stored point. Points
// with missing fields are reported as not ok and skipped by callers.
func entryFromPayload(payload map[string]*qdrant.Value, vectors *qdrant.VectorsOutput) (models.CacheEntry, bool) {
	idVal, ok := payload["id"]
	if !ok {
		return models.CacheEntry{}, false
	}
	queryVal, ok := payload["query"]
	if !ok {
		return models.CacheEntry{}, false
	}
	responseVal, ok := payload["response"]
	if !ok {
		return models.CacheEntry{}, false
	}

	entry := models.CacheEntry{
		ID:       idVal.GetStringValue(),
		Query:    queryVal.GetStringValue(),
		Response: responseVal.GetStringValue(),
	}
	if v, ok := payload["category"]; ok {
		entry.Category = models.Category(v.GetStringValue())
	}
	if v, ok := payload["created_at"]; ok {
		entry.CreatedAt = v.GetIntegerValue()
	}
	if v, ok := payload["ttl_seconds"]; ok {
		entry.TTLSeconds = v.GetIntegerValue()
	}
	if vectors != nil {
		if v := vectors.GetVector(); v != nil {
			entry.Embedding = v.GetData()
		}
	}
	return entry, true
}
