package models

// QueryRequest is the body of a POST /query call.
type QueryRequest struct {
	Query        string `json:"query"`
	ForceRefresh bool   `json:"forceRefresh,omitempty"`
}

// Metadata describes how a response was produced.
//
// SimilarityScore and MatchedQuery are present only on cache hits;
// Threshold only on generator responses.
type Metadata struct {
	Source          string   `json:"source"`
	Category        Category `json:"category"`
	Confidence      string   `json:"confidence,omitempty"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	MatchedQuery    string   `json:"matchedQuery,omitempty"`
	Threshold       *float64 `json:"threshold,omitempty"`
}

const (
	// SourceCache marks answers served from a stored entry.
	SourceCache = "cache"
	// SourceGenerator marks answers produced by the generative model.
	SourceGenerator = "generator"
)

// QueryResponse is the body returned for a POST /query call.
type QueryResponse struct {
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}
