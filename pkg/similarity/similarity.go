// Package similarity ranks cache entries by cosine distance to a query
// embedding.
package similarity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/semcache-ai/semcache/pkg/models"
)

// Cosine returns the cosine similarity of two equal-length vectors.
//
// If either vector has zero norm the similarity is 0 (maximal
// uncertainty), not an error. A length mismatch is a data error and is
// reported as such rather than silently truncated.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d != %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Distance returns the cosine distance 1 - Cosine(a, b):
// 0 = identical direction, 1 = orthogonal, up to 2 = opposite.
func Distance(a, b []float32) (float64, error) {
	sim, err := Cosine(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// Score converts a cosine distance back to a similarity clamped to [0,1],
// so opposite vectors score 0 rather than -1.
func Score(distance float64) float64 {
	sim := 1 - distance
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Match pairs a candidate entry with its distance to the query.
type Match struct {
	Entry    models.CacheEntry
	Distance float64
}

// Rank orders live candidates by ascending cosine distance to the query
// embedding and truncates to k.
//
// Candidates without an embedding are dropped; expired candidates are
// excluded even when they would be the closest match. A dimension
// mismatch between the query and a stored vector aborts the whole pass.
// Ties keep scan order, which is not a guaranteed ordering.
func Rank(query []float32, candidates []models.CacheEntry, k int, now time.Time) ([]Match, error) {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		if !c.Live(now) {
			continue
		}
		d, err := Distance(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("rank candidate %s: %w", c.ID, err)
		}
		matches = append(matches, Match{Entry: c, Distance: d})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
