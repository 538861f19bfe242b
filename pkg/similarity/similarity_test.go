package similarity

import (
	"math"
	"testing"
	"time"

	"github.com/semcache-ai/semcache/pkg/models"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector a", []float32{0, 0}, []float32{1, 2}, 0},
		{"zero vector b", []float32{1, 2}, []float32{0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("Cosine returned NaN")
			}
		})
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{2.2, 0.4, -0.7, 1.1}
	ab, _ := Distance(a, b)
	ba, _ := Distance(b, a)
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestSelfDistance(t *testing.T) {
	a := []float32{0.5, 1.5, -2.5}
	d, err := Distance(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d) > 1e-9 {
		t.Errorf("self distance = %v, want 0", d)
	}
}

func TestCosineLengthMismatch(t *testing.T) {
	if _, err := Cosine([]float32{1, 2}, []float32{1, 2, 3}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},    // identical
		{1, 0},    // orthogonal
		{2, 0},    // opposite, clamped
		{0.25, 0.75},
		{-0.1, 1}, // numeric noise past identical, clamped
	}
	for _, tt := range tests {
		if got := Score(tt.distance); got != tt.want {
			t.Errorf("Score(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func entry(id string, emb []float32, age, ttl time.Duration, now time.Time) models.CacheEntry {
	return models.CacheEntry{
		ID:         id,
		Embedding:  emb,
		CreatedAt:  now.Add(-age).Unix(),
		TTLSeconds: int64(ttl.Seconds()),
	}
}

func TestRank(t *testing.T) {
	now := time.Now()
	query := []float32{1, 0, 0}
	candidates := []models.CacheEntry{
		entry("far", []float32{0, 1, 0}, time.Minute, time.Hour, now),
		entry("near", []float32{1, 0.1, 0}, time.Minute, time.Hour, now),
		entry("exact", []float32{2, 0, 0}, time.Minute, time.Hour, now),
	}

	matches, err := Rank(query, candidates, 2, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry.ID != "exact" {
		t.Errorf("best match = %s, want exact", matches[0].Entry.ID)
	}
	if matches[1].Entry.ID != "near" {
		t.Errorf("second match = %s, want near", matches[1].Entry.ID)
	}
}

func TestRankExcludesExpired(t *testing.T) {
	now := time.Now()
	query := []float32{1, 0}
	candidates := []models.CacheEntry{
		// Identical vector but past its TTL.
		entry("expired", []float32{1, 0}, 2*time.Hour, time.Hour, now),
		entry("live", []float32{1, 0.5}, time.Minute, time.Hour, now),
	}

	matches, err := Rank(query, candidates, 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Entry.ID != "live" {
		t.Errorf("expired entry not excluded: %+v", matches)
	}
}

func TestTTLBoundary(t *testing.T) {
	now := time.Now()
	// Exactly at the TTL is expired; one second inside is live.
	atBoundary := entry("at", []float32{1}, time.Hour, time.Hour, now)
	inside := entry("in", []float32{1}, time.Hour-time.Second, time.Hour, now)

	if atBoundary.Live(now) {
		t.Error("entry exactly at TTL must be expired")
	}
	if !inside.Live(now) {
		t.Error("entry inside TTL must be live")
	}
}

func TestRankDropsMissingEmbeddings(t *testing.T) {
	now := time.Now()
	candidates := []models.CacheEntry{
		entry("empty", nil, time.Minute, time.Hour, now),
		entry("ok", []float32{1, 0}, time.Minute, time.Hour, now),
	}

	matches, err := Rank([]float32{1, 0}, candidates, 3, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Entry.ID != "ok" {
		t.Errorf("candidate without embedding not dropped: %+v", matches)
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	now := time.Now()
	candidates := []models.CacheEntry{
		entry("bad", []float32{1, 2, 3}, time.Minute, time.Hour, now),
	}
	if _, err := Rank([]float32{1, 2}, candidates, 1, now); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestRankEmpty(t *testing.T) {
	matches, err := Rank([]float32{1}, nil, 5, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}
