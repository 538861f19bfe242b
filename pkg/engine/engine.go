// Package engine decides, per query, whether a cached answer can be
// reused or a new one must be generated and written back.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/semcache-ai/semcache/pkg/classifier"
	"github.com/semcache-ai/semcache/pkg/config"
	"github.com/semcache-ai/semcache/pkg/llm"
	"github.com/semcache-ai/semcache/pkg/models"
	"github.com/semcache-ai/semcache/pkg/similarity"
	"github.com/semcache-ai/semcache/pkg/store"
)

// ErrEmptyQuery rejects requests before any external call is made.
var ErrEmptyQuery = fmt.Errorf("query must not be empty")

// Engine orchestrates classifier, similarity ranking, store, and the
// generative collaborators. It holds no per-request state; concurrent
// queries share only the store.
type Engine struct {
	store store.Store
	llm   llm.Client
	cache config.CacheConfig

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

// New wires an Engine with its store and LLM collaborators.
func New(cache config.CacheConfig, st store.Store, client llm.Client) *Engine {
	return &Engine{
		store: st,
		llm:   client,
		cache: cache,
		now:   time.Now,
	}
}

// Query runs one admission decision.
//
// Scan and ranking failures degrade to the miss path, so the service
// always produces an answer. Embedding, generation, and write failures
// are fatal to the request and are not retried here.
func (e *Engine) Query(ctx context.Context, query string, forceRefresh bool) (*models.QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	result := classifier.Classify(query)

	// The embedding is needed on both paths: for matching on lookup,
	// and for the entry written back on a miss.
	embedding, err := e.llm.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if !forceRefresh {
		if match, sim, ok := e.lookup(ctx, embedding); ok {
			e.hits.Add(1)
			return &models.QueryResponse{
				Response: match.Entry.Response,
				Metadata: models.Metadata{
					Source:          models.SourceCache,
					Category:        result.Category,
					Confidence:      string(result.Confidence),
					SimilarityScore: &sim,
					MatchedQuery:    match.Entry.Query,
				},
			}, nil
		}
	}

	answer, err := e.llm.Answer(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	now := e.now()
	entry := models.CacheEntry{
		ID:         store.Fingerprint(query),
		Query:      query,
		Response:   answer,
		Embedding:  embedding,
		Category:   result.Category,
		CreatedAt:  now.Unix(),
		TTLSeconds: int64(e.cache.TTLFor(result.Category).Seconds()),
	}
	if err := e.store.Put(ctx, entry); err != nil {
		// A swallowed write would silently cost future hits.
		return nil, fmt.Errorf("persist entry: %w", err)
	}
	e.misses.Add(1)

	threshold := e.cache.Threshold
	return &models.QueryResponse{
		Response: answer,
		Metadata: models.Metadata{
			Source:     models.SourceGenerator,
			Category:   result.Category,
			Confidence: string(result.Confidence),
			Threshold:  &threshold,
		},
	}, nil
}

// lookup finds the best live match and tests it against the threshold.
// Any store or ranking failure is logged and treated as no candidates,
// so a degraded cache never blocks an answer.
func (e *Engine) lookup(ctx context.Context, embedding []float32) (similarity.Match, float64, bool) {
	matches, err := e.candidates(ctx, embedding)
	if err != nil {
		log.Printf("cache lookup degraded, proceeding without candidates: %v", err)
		return similarity.Match{}, 0, false
	}
	if len(matches) == 0 {
		return similarity.Match{}, 0, false
	}

	best := matches[0]
	sim := similarity.Score(best.Distance)
	if sim < e.cache.Threshold {
		return similarity.Match{}, 0, false
	}
	return best, sim, true
}

// candidates ranks live entries by distance to the query embedding,
// using the backend's own index when it has one.
func (e *Engine) candidates(ctx context.Context, embedding []float32) ([]similarity.Match, error) {
	if searcher, ok := e.store.(store.Searcher); ok {
		return searcher.Search(ctx, embedding, e.cache.TopK)
	}

	entries, err := e.store.Scan(ctx, e.cache.ScanWindow)
	if err != nil {
		return nil, err
	}
	return similarity.Rank(embedding, entries, e.cache.TopK, e.now())
}

// Stats reports hit/miss counts since the engine started.
func (e *Engine) Stats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}
