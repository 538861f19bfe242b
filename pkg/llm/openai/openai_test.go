package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/semcache-ai/semcache/pkg/config"
)

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		BaseURL:        baseURL,
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		Dimensions:     3,
		Timeout:        5 * time.Second,
	}
}

func TestEmbed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("expected API key in upstream request")
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Input != "hello" || req.Model != "text-embedding-3-small" {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer upstream.Close()

	c := New(testConfig(upstream.URL), "sk-test")
	vec, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2}}},
		})
	}))
	defer upstream.Close()

	c := New(testConfig(upstream.URL), "sk-test")
	if _, err := c.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for wrong dimensionality")
	}
}

func TestEmbedUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	c := New(testConfig(upstream.URL), "sk-test")
	if _, err := c.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for non-200 upstream response")
	}
}

func TestAnswer(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if req.Messages[1].Content != "what is rain" {
			t.Errorf("unexpected user message: %q", req.Messages[1].Content)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Water falling from clouds."}},
			},
		})
	}))
	defer upstream.Close()

	c := New(testConfig(upstream.URL), "sk-test")
	answer, err := c.Answer(context.Background(), "what is rain")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Water falling from clouds." {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestAnswerEmptyChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer upstream.Close()

	c := New(testConfig(upstream.URL), "sk-test")
	answer, err := c.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if answer == "" {
		t.Error("expected fallback answer for empty choices")
	}
}
