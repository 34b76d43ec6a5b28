package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSettings_NormalizeDefaults tests fallback values for an empty struct
func TestSettings_NormalizeDefaults(t *testing.T) {
	s := Settings{EmbeddingModel: "nomic-embed-text"}
	s.Normalize()

	assert.Equal(t, DefaultChunkSize, s.ChunkSize)
	assert.Equal(t, DefaultChunkSize/20, s.ChunkOverlap)
	assert.Equal(t, DefaultTopK, s.TopK)
}

// TestSettings_NormalizeOverlapTracksChunkSize tests the derived overlap
func TestSettings_NormalizeOverlapTracksChunkSize(t *testing.T) {
	s := Settings{EmbeddingModel: "nomic-embed-text", ChunkSize: 512}
	s.Normalize()

	assert.Equal(t, 512, s.ChunkSize)
	assert.Equal(t, 25, s.ChunkOverlap)
}

// TestSettings_NormalizeKeepsExplicit tests that set fields survive
func TestSettings_NormalizeKeepsExplicit(t *testing.T) {
	s := Settings{
		EmbeddingModel: "nomic-embed-text",
		ChunkSize:      200,
		ChunkOverlap:   10,
		TopK:           3,
	}
	s.Normalize()

	assert.Equal(t, 200, s.ChunkSize)
	assert.Equal(t, 10, s.ChunkOverlap)
	assert.Equal(t, 3, s.TopK)
}

// TestSettings_Validate tests rejection of inconsistent configurations
func TestSettings_Validate(t *testing.T) {
	valid := Settings{
		EmbeddingModel: "nomic-embed-text",
		ChunkSize:      1000,
		ChunkOverlap:   20,
		TopK:           5,
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.EmbeddingModel = ""
	assert.ErrorIs(t, missing.Validate(), ErrInvalidInput)

	overlap := valid
	overlap.ChunkOverlap = 1000
	assert.ErrorIs(t, overlap.Validate(), ErrInvalidInput)

	negative := valid
	negative.BatchSize = -1
	assert.ErrorIs(t, negative.Validate(), ErrInvalidInput)
}

// TestSettings_EmbedBatchSize tests the interplay of config, model and window
func TestSettings_EmbedBatchSize(t *testing.T) {
	s := Settings{ChunkSize: 1000}

	// Model default capped by the input window.
	assert.Equal(t, 8, s.EmbedBatchSize(32, 8192))

	// Explicit batch size wins when it fits the window.
	s.BatchSize = 4
	assert.Equal(t, 4, s.EmbedBatchSize(32, 8192))

	// The window still caps an oversized explicit value.
	s.BatchSize = 100
	assert.Equal(t, 8, s.EmbedBatchSize(32, 8192))

	// A window smaller than one chunk floors at a single chunk.
	s.BatchSize = 0
	assert.Equal(t, 1, s.EmbedBatchSize(32, 500))

	// Without a window the model default stands.
	assert.Equal(t, 32, s.EmbedBatchSize(32, 0))
}
