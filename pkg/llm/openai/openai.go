// Package openai implements llm.Client against the OpenAI HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/semcache-ai/semcache/pkg/config"
)

const answerSystemPrompt = "You are a helpful, concise assistant. Keep answers short but accurate."

// Client calls the OpenAI embeddings and chat completions endpoints.
type Client struct {
	baseURL        string
	apiKey         string
	embeddingModel string
	chatModel      string
	dimensions     int
	http           *http.Client
}

// New builds a Client from the OpenAI config section and an API key.
func New(cfg config.OpenAIConfig, apiKey string) *Client {
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         apiKey,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dimensions:     cfg.Dimensions,
		http:           &http.Client{Timeout: cfg.Timeout},
	}
}

type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
	Dimensions     int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements llm.Client.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:          c.embeddingModel,
		Input:          text,
		EncodingFormat: "float",
		Dimensions:     c.dimensions,
	}

	var resp embeddingResponse
	if err := c.post(ctx, "/v1/embeddings", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), c.dimensions)
	}
	return embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Answer implements llm.Client.
func (c *Client) Answer(ctx context.Context, query string) (string, error) {
	reqBody := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0.2,
	}

	var resp chatResponse
	if err := c.post(ctx, "/v1/chat/completions", reqBody, &resp); err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "Sorry, I have no answer.", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
