// Package llm defines the generative collaborators: the embedding model
// and the answer generator. Both are thin I/O; failures propagate to
// the request that triggered them and are never retried here.
package llm

import "context"

// Client produces embeddings and generated answers for query text.
type Client interface {
	// Embed returns a fixed-length vector for the text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Answer generates a response for the query.
	Answer(ctx context.Context, query string) (string, error)
}
