package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to run against the corpus"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default from corpus settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Sources []string             `json:"sources,omitempty"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID uint64  `json:"document_id"`
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// SyncInput is the input schema for the sync tool.
type SyncInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"re-embed every document even when its content hash is unchanged"`
}

// SyncOutput is the output schema for the sync tool.
type SyncOutput struct {
	Added     int    `json:"added"`
	Deleted   int    `json:"deleted"`
	Unchanged int    `json:"unchanged"`
	Chunks    int    `json:"chunks"`
	Duration  string `json:"duration"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Hybrid keyword and vector search across the indexed corpus",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync",
		Description: "Synchronise the corpus with its registered document sources",
	}, s.handleSync)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{TopK: input.TopK}
	result, err := s.ports.Rag.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(result.Results)),
		Sources: result.Sources,
		Count:   len(result.Results),
	}

	for i := range result.Results {
		output.Results[i] = SearchResultOutput{
			DocumentID: uint64(result.Results[i].ID),
			Path:       result.Results[i].Path,
			Score:      result.Results[i].Score,
			Text:       result.Results[i].Text,
		}
	}

	return nil, output, nil
}

// handleSync handles the sync tool invocation.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	report, err := s.ports.Rag.Sync(ctx, domain.SyncOptions{Refresh: input.Refresh})
	if err != nil {
		return nil, SyncOutput{}, err
	}

	output := SyncOutput{
		Added:     report.Added,
		Deleted:   report.Deleted,
		Unchanged: report.Unchanged,
		Chunks:    report.Chunks,
		Duration:  report.Duration.Round(time.Millisecond).String(),
	}

	return nil, output, nil
}
