package driven

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// IndexDocument is one chunk handed to an index rebuild. Rebuild input
// order is the corpus iteration order and determines tie-breaking.
type IndexDocument struct {
	ID   domain.DocumentID
	Text string
}

// VectorDocument is one embedding handed to a vector index rebuild.
type VectorDocument struct {
	ID     domain.DocumentID
	Vector []float32
}

// Hit is one scored index match.
type Hit struct {
	// ID is the matched chunk.
	ID domain.DocumentID

	// Score is the index-specific relevance score: a BM25 score for the
	// keyword index, a cosine similarity for the vector index.
	Score float64
}

// KeywordIndex provides exact-term relevance search over chunk text.
// The index is immutable between rebuilds; a sync replaces it wholesale.
type KeywordIndex interface {
	// Rebuild replaces the index contents.
	Rebuild(ctx context.Context, docs []IndexDocument) error

	// Search returns up to topK hits by descending score, ties broken by
	// rebuild input order. Hits scoring at or below minScore are dropped.
	Search(ctx context.Context, query string, topK int, minScore float64) ([]Hit, error)
}

// VectorIndex provides semantic similarity search over chunk embeddings.
// Backed by an HNSW graph; rebuilt wholesale on every sync.
type VectorIndex interface {
	// Rebuild replaces the index contents.
	Rebuild(ctx context.Context, docs []VectorDocument) error

	// Search returns up to topK hits by descending cosine similarity.
	// Hits scoring below minScore are dropped.
	Search(ctx context.Context, query []float32, topK int, minScore float64) ([]Hit, error)

	// Close releases resources.
	Close() error
}
