package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

func TestExtractHistoryLimit(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected int
	}{
		{
			name:     "valid history URI",
			uri:      "ragdex://history/25",
			expected: 25,
		},
		{
			name:     "invalid prefix",
			uri:      "file://history/25",
			expected: 0,
		},
		{
			name:     "non numeric limit",
			uri:      "ragdex://history/lots",
			expected: 0,
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractHistoryLimit(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCorpusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns corpus summary", func(t *testing.T) {
		mock := &mockRagService{
			info: &domain.Info{
				StorePath: "/home/user/.ragdex/corpus.yaml",
				Settings: domain.Settings{
					EmbeddingModel: "text-embedding-3-small",
					ChunkSize:      1000,
					ChunkOverlap:   50,
					TopK:           5,
				},
				Sources: []string{"docs/**/*.md"},
				Files:   4,
				Chunks:  9,
				Vectors: 9,
			},
		}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://corpus")
		result, err := server.handleCorpusResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "/home/user/.ragdex/corpus.yaml")
		assert.Contains(t, result.Contents[0].Text, "text-embedding-3-small")
		assert.Contains(t, result.Contents[0].Text, `"files": 4`)
		assert.Contains(t, result.Contents[0].Text, `"vectors": 9`)
	})

	t.Run("returns error on info failure", func(t *testing.T) {
		mock := &mockRagService{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://corpus")
		_, err = server.handleCorpusResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading corpus info")
	})
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("no sources returns empty list", func(t *testing.T) {
		mock := &mockRagService{}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://sources")
		result, err := server.handleSourcesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns sources successfully", func(t *testing.T) {
		mock := &mockRagService{
			sources: []string{"docs/**/*.md", "https://example.com/guide"},
		}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://sources")
		result, err := server.handleSourcesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "docs/**/*.md")
		assert.Contains(t, result.Contents[0].Text, "https://example.com/guide")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mock := &mockRagService{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://sources")
		_, err = server.handleSourcesResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sources")
	})
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns recent searches", func(t *testing.T) {
		mock := &mockRagService{
			history: []domain.HistoryEntry{
				{
					ID:        2,
					Query:     "kayak routes",
					Results:   3,
					CreatedAt: time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
				},
			},
		}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://history/10")
		result, err := server.handleHistoryResource(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 10, mock.historyLimit)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "kayak routes")
		assert.Contains(t, result.Contents[0].Text, `"results": 3`)
		assert.Contains(t, result.Contents[0].Text, "2025-06-02T10:30:00Z")
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		mock := &mockRagService{}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://history/lots")
		_, err = server.handleHistoryResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns error on history failure", func(t *testing.T) {
		mock := &mockRagService{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Rag: mock})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragdex://history/10")
		_, err = server.handleHistoryResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading history")
	})
}
