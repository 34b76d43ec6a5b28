package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Tests for hybrid search. The shared mocks live in rag_test.go.

// Chunk ids of the three-file search fixture, in load order.
var (
	docAlpha   = domain.NewDocumentID(0, 0)
	docBravo   = domain.NewDocumentID(1, 0)
	docCharlie = domain.NewDocumentID(2, 0)
)

// newSearchFixture syncs three single-chunk files whose bodies carry
// distinct terms, so keyword matches are fully predictable.
func newSearchFixture(t *testing.T) *ragFixture {
	t.Helper()

	loader := newMockLoader()
	loader.expand["docs"] = []string{"docs/alpha.md", "docs/bravo.md", "docs/charlie.md"}
	loader.content["docs/alpha.md"] = "alpha kayak river"
	loader.content["docs/bravo.md"] = "bravo canoe river"
	loader.content["docs/charlie.md"] = "charlie raft river"

	f := newTestRag(t, loader)
	registerSources(f, "docs")
	_, err := f.rag.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)
	return f
}

func TestSearch_EmptyQueryReturnsEmptyOutput(t *testing.T) {
	f := newSearchFixture(t)

	out, err := f.rag.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, out.IDs)
	assert.Empty(t, out.Text)

	// Empty queries are not recorded.
	entries, err := f.rag.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	f := newTestRag(t, newMockLoader())

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
}

func TestSearch_FusesVectorAndKeywordRanks(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.hits = []driven.Hit{{ID: docCharlie, Score: 0.9}, {ID: docBravo, Score: 0.8}}

	out, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.NoError(t, err)

	// The vector index ranks charlie then bravo, the keyword index finds
	// alpha. Weighted reciprocal ranks order them charlie, bravo, alpha.
	require.Equal(t, []domain.DocumentID{docCharlie, docBravo, docAlpha}, out.IDs)
	assert.Equal(t, []string{"docs/charlie.md", "docs/bravo.md", "docs/alpha.md"}, out.Sources)

	require.Len(t, out.Results, 3)
	assert.Greater(t, out.Results[0].Score, out.Results[1].Score)
	assert.Greater(t, out.Results[1].Score, out.Results[2].Score)
	assert.Equal(t, "docs/charlie.md", out.Results[0].Path)

	assert.Contains(t, out.Text, "charlie raft river")
	assert.Contains(t, out.Text, "alpha kayak river")
}

func TestSearch_VectorEdgeWinsEqualRanks(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.hits = []driven.Hit{{ID: docBravo, Score: 0.9}}

	out, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.NoError(t, err)

	// Both lists rank their only hit first; the vector weight breaks
	// the tie.
	assert.Equal(t, []domain.DocumentID{docBravo, docAlpha}, out.IDs)
}

func TestSearch_TopKLimitsResults(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.hits = []driven.Hit{{ID: docCharlie, Score: 0.9}, {ID: docBravo, Score: 0.8}}

	out, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{TopK: 1})
	require.NoError(t, err)

	assert.Equal(t, []domain.DocumentID{docCharlie}, out.IDs)
	assert.Equal(t, 1, f.vector.gotTopK)
}

func TestSearch_ForwardsScoreThresholds(t *testing.T) {
	f := newSearchFixture(t)

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{MinVectorScore: 0.5})
	require.NoError(t, err)

	assert.Equal(t, 0.5, f.vector.gotMinScore)
}

func TestSearch_RerankerOverridesFusion(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.hits = []driven.Hit{{ID: docCharlie, Score: 0.9}, {ID: docBravo, Score: 0.8}}
	f.rerankers.reranker.results = []driven.RankedDocument{
		{Index: 2, Score: 0.95},
		{Index: 0, Score: 0.40},
	}

	out, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{RerankModel: "rerank-lite"})
	require.NoError(t, err)

	// Candidates in vector-first order: charlie, bravo, alpha. The
	// reranker picked index 2 (alpha) then index 0 (charlie).
	assert.Equal(t, []domain.DocumentID{docAlpha, docCharlie}, out.IDs)
	require.Len(t, out.Results, 2)
	assert.InDelta(t, 0.95, out.Results[0].Score, 1e-9)

	assert.Equal(t, "rerank-lite", f.rerankers.gotModel)
	assert.Equal(t, "kayak", f.rerankers.reranker.gotQuery)
	assert.Len(t, f.rerankers.reranker.gotDocs, 3)
	assert.Equal(t, domain.DefaultTopK, f.rerankers.reranker.gotTopN)
	assert.True(t, f.rerankers.reranker.closed)
}

func TestSearch_RerankerFromSettings(t *testing.T) {
	f := newSearchFixture(t)
	require.NoError(t, f.rag.SetRerankerModel(context.Background(), "rerank-lite"))
	f.rerankers.reranker.results = []driven.RankedDocument{{Index: 0, Score: 0.9}}

	out, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "rerank-lite", f.rerankers.gotModel)
	assert.Equal(t, []domain.DocumentID{docAlpha}, out.IDs)
}

func TestSearch_RerankerFailureFailsSearch(t *testing.T) {
	f := newSearchFixture(t)
	f.rerankers.reranker.err = errors.New("quota exceeded")

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{RerankModel: "rerank-lite"})
	assert.ErrorIs(t, err, domain.ErrRerankFailed)
}

func TestSearch_RerankerWithoutFactory(t *testing.T) {
	f := newSearchFixture(t)
	f.rag.rerankers = nil

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{RerankModel: "rerank-lite"})
	assert.ErrorIs(t, err, domain.ErrRerankFailed)
}

func TestSearch_QueryEmbeddingFailure(t *testing.T) {
	f := newSearchFixture(t)
	f.embedder.failures = 1

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearch_VectorIndexFailure(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.searchErr = errors.New("graph corrupted")

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search")
}

func TestSearch_RecordsHistory(t *testing.T) {
	f := newSearchFixture(t)
	f.vector.hits = []driven.Hit{{ID: docCharlie, Score: 0.9}}

	_, err := f.rag.Search(context.Background(), "kayak", domain.SearchOptions{})
	require.NoError(t, err)

	entries, err := f.rag.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kayak", entries[0].Query)
	assert.Equal(t, 2, entries[0].Results)
}

func TestReciprocalRankFusion(t *testing.T) {
	a, b, c := domain.DocumentID(1), domain.DocumentID(2), domain.DocumentID(3)

	ranked := reciprocalRankFusion(
		[][]domain.DocumentID{{a, b}, {b, c}},
		[]float64{vectorFusionWeight, keywordFusionWeight},
		3,
	)

	// rrfK = 6: a scores 1.125/7, b scores 1.125/8 + 1/7, c scores 1/8.
	require.Len(t, ranked, 3)
	assert.Equal(t, b, ranked[0].id)
	assert.Equal(t, a, ranked[1].id)
	assert.Equal(t, c, ranked[2].id)
	assert.InDelta(t, 1.125/8+1.0/7, ranked[0].score, 1e-12)
	assert.InDelta(t, 1.125/7, ranked[1].score, 1e-12)
	assert.InDelta(t, 1.0/8, ranked[2].score, 1e-12)
}

func TestReciprocalRankFusion_TruncatesToTopK(t *testing.T) {
	a, b := domain.DocumentID(1), domain.DocumentID(2)

	ranked := reciprocalRankFusion([][]domain.DocumentID{{a}, {b}}, []float64{1, 1}, 1)

	// Equal scores keep first-seen order before truncation.
	require.Len(t, ranked, 1)
	assert.Equal(t, a, ranked[0].id)
}
