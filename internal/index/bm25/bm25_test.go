package bm25

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

func buildIndex(t *testing.T, texts ...string) *Index {
	t.Helper()
	docs := make([]driven.IndexDocument, len(texts))
	for i, text := range texts {
		docs[i] = driven.IndexDocument{ID: domain.DocumentID(i), Text: text}
	}
	x := New(DefaultOptions())
	require.NoError(t, x.Rebuild(context.Background(), docs))
	return x
}

func hitIDs(hits []driven.Hit) []domain.DocumentID {
	ids := make([]domain.DocumentID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

// TestTokenize tests stop-word removal and word boundary detection
func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"quick", "fox", "jumps", "over", "lazy", "dog"},
		tokenize("a quick fox jumps over the lazy dog"),
	)
}

// TestTokenize_Punctuation tests that punctuation segments are dropped
func TestTokenize_Punctuation(t *testing.T) {
	assert.Equal(t,
		[]string{"Hello", "good", "man"},
		tokenize("Hello there, good man!"),
	)
}

// TestTokenize_CaseSensitiveStops tests that capitalised stop words survive
func TestTokenize_CaseSensitiveStops(t *testing.T) {
	assert.Equal(t, []string{"It", "windy"}, tokenize("It is windy"))
}

// TestIndex_Scores tests the dense score vector against known values
func TestIndex_Scores(t *testing.T) {
	x := buildIndex(t,
		"Hello there good man!",
		"It is quite windy in London",
		"How is the weather today?",
	)

	scores := x.scores("windy London")

	require.Len(t, scores, 3)
	assert.Zero(t, scores[0])
	assert.InDelta(t, 0.9372947225064051, scores[1], 1e-12)
	assert.Zero(t, scores[2])
}

// TestIndex_Search tests ranking with the threshold disabled
func TestIndex_Search(t *testing.T) {
	x := buildIndex(t,
		"Hello there good man!",
		"It is quite windy in London",
		"How is the weather today?",
	)

	hits, err := x.Search(context.Background(), "windy London", 3, math.Inf(-1))

	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{1, 0, 2}, hitIDs(hits))
}

// TestIndex_SearchMinScore tests that zero scores are dropped at threshold 0
func TestIndex_SearchMinScore(t *testing.T) {
	x := buildIndex(t,
		"Hello there good man!",
		"It is quite windy in London",
		"How is the weather today?",
	)

	hits, err := x.Search(context.Background(), "windy London", 3, 0)

	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{1}, hitIDs(hits))
	assert.Greater(t, hits[0].Score, 0.0)
}

// TestIndex_SearchTopK tests result truncation
func TestIndex_SearchTopK(t *testing.T) {
	x := buildIndex(t,
		"Hello there good man!",
		"It is quite windy in London",
		"How is the weather today?",
	)

	hits, err := x.Search(context.Background(), "windy London", 1, math.Inf(-1))

	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{1}, hitIDs(hits))
}

// TestIndex_RebuildReplaces tests that a rebuild discards previous state
func TestIndex_RebuildReplaces(t *testing.T) {
	x := buildIndex(t, "alpha beta", "gamma delta")

	require.NoError(t, x.Rebuild(context.Background(), []driven.IndexDocument{
		{ID: domain.DocumentID(7), Text: "epsilon zeta"},
	}))

	hits, err := x.Search(context.Background(), "alpha", 5, math.Inf(-1))
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{7}, hitIDs(hits), "old terms score zero but the doc list is new")

	hits, err = x.Search(context.Background(), "epsilon", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{7}, hitIDs(hits))
}

// TestIndex_EmptyCorpus tests searching an empty index
func TestIndex_EmptyCorpus(t *testing.T) {
	x := New(DefaultOptions())
	require.NoError(t, x.Rebuild(context.Background(), nil))

	hits, err := x.Search(context.Background(), "anything", 5, 0)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

// TestIndex_CancelledRebuild tests context cancellation during rebuild
func TestIndex_CancelledRebuild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	x := New(DefaultOptions())
	err := x.Rebuild(ctx, []driven.IndexDocument{{ID: 0, Text: "text"}})

	assert.ErrorIs(t, err, context.Canceled)
}
