package driven

import "context"

// Reranker reorders candidate documents by relevance to a query using an
// external model. This is an optional service - when nil, hybrid search
// falls back to reciprocal rank fusion.
type Reranker interface {
	// Rerank scores documents against the query and returns up to topN
	// results ordered most relevant first. Index refers into the input
	// documents slice.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RankedDocument, error)

	// ModelName returns the name of the reranking model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// RankedDocument is one reranked result.
type RankedDocument struct {
	// Index is the position of the document in the rerank input.
	Index int

	// Score is the model's relevance score.
	Score float64
}
