// Package vecgo adapts the vecgo embedded vector database to the
// VectorIndex port. Each rebuild constructs a fresh in-memory HNSW
// graph over the corpus embeddings; searches report cosine similarity.
package vecgo

import (
	"context"
	"fmt"
	"sync"

	vg "github.com/hupe1980/vecgo"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// HNSW construction parameters.
const (
	// DefaultM is the maximum number of graph connections per layer.
	DefaultM = 32

	// DefaultEFConstruction is the candidate list size used while the
	// graph is built.
	DefaultEFConstruction = 200
)

// Compile-time check that Index implements the VectorIndex interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory HNSW vector index keyed by chunk identifier.
// The graph is immutable between rebuilds; a sync swaps it wholesale.
type Index struct {
	mu sync.RWMutex
	db *vg.Vecgo[uint64]
}

// New creates an empty index. Searching before the first rebuild
// returns no hits.
func New() *Index {
	return &Index{}
}

// Rebuild replaces the index with a new graph over docs. The vector
// dimension is taken from the first document; an empty docs slice
// leaves the index empty.
func (x *Index) Rebuild(ctx context.Context, docs []driven.VectorDocument) error {
	var db *vg.Vecgo[uint64]

	if len(docs) > 0 {
		dimension := len(docs[0].Vector)

		built, err := vg.HNSW[uint64](dimension).
			Cosine().
			M(DefaultM).
			EFConstruction(DefaultEFConstruction).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build vector index: %w", err)
		}

		items := make([]vg.VectorWithData[uint64], 0, len(docs))
		for _, doc := range docs {
			items = append(items, vg.VectorWithData[uint64]{
				Vector: doc.Vector,
				Data:   uint64(doc.ID),
			})
		}

		result := built.BatchInsert(ctx, items)
		for i, insertErr := range result.Errors {
			if insertErr != nil {
				_ = built.Close()
				return fmt.Errorf("failed to index vector for chunk %d: %w", docs[i].ID, insertErr)
			}
		}

		db = built
	}

	x.mu.Lock()
	old := x.db
	x.db = db
	x.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// Search returns up to topK hits by descending cosine similarity,
// dropping hits that score below minScore.
func (x *Index) Search(ctx context.Context, query []float32, topK int, minScore float64) ([]driven.Hit, error) {
	x.mu.RLock()
	db := x.db
	x.mu.RUnlock()

	if db == nil || topK <= 0 {
		return nil, nil
	}

	results, err := db.KNNSearch(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	// The graph stores cosine distance; hits come back nearest first.
	hits := make([]driven.Hit, 0, len(results))
	for _, result := range results {
		score := 1 - float64(result.Distance)
		if score < minScore {
			continue
		}

		hits = append(hits, driven.Hit{
			ID:    domain.DocumentID(result.Data),
			Score: score,
		})
	}

	return hits, nil
}

// Close releases the underlying graph. The index is unusable for
// searching afterwards until the next rebuild.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	db := x.db
	x.db = nil
	if db == nil {
		return nil
	}
	return db.Close()
}
