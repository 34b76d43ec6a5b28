package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ragdex resources.
	uriScheme = "ragdex://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for corpus statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpus",
		Name:        "corpus",
		Description: "Corpus statistics and engine settings",
		MIMEType:    "application/json",
	}, s.handleCorpusResource)

	// Static resource for listing sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "Registered document source patterns",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Template for recent searches.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{limit}",
		Name:        "history",
		Description: "Recent searches, most recent first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleCorpusResource returns corpus statistics and settings.
func (s *Server) handleCorpusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.Rag.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading corpus info: %w", err)
	}

	// Build simplified corpus summary.
	type corpusInfo struct {
		Store          string   `json:"store"`
		EmbeddingModel string   `json:"embedding_model"`
		ChunkSize      int      `json:"chunk_size"`
		ChunkOverlap   int      `json:"chunk_overlap"`
		TopK           int      `json:"top_k"`
		RerankerModel  string   `json:"reranker_model,omitempty"`
		Sources        []string `json:"sources"`
		Files          int      `json:"files"`
		Chunks         int      `json:"chunks"`
		Vectors        int      `json:"vectors"`
	}

	summary := corpusInfo{
		Store:          info.StorePath,
		EmbeddingModel: info.Settings.EmbeddingModel,
		ChunkSize:      info.Settings.ChunkSize,
		ChunkOverlap:   info.Settings.ChunkOverlap,
		TopK:           info.Settings.TopK,
		RerankerModel:  info.Settings.RerankerModel,
		Sources:        info.Sources,
		Files:          info.Files,
		Chunks:         info.Chunks,
		Vectors:        info.Vectors,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling corpus info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSourcesResource returns the registered source patterns.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sources, err := s.ports.Rag.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	if sources == nil {
		sources = []string{}
	}

	data, err := json.MarshalIndent(sources, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleHistoryResource returns recent searches.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract limit from URI: ragdex://history/{limit}
	limit := extractHistoryLimit(req.Params.URI)
	if limit <= 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.Rag.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	// Build simplified history list.
	type historyInfo struct {
		Query     string `json:"query"`
		Results   int    `json:"results"`
		CreatedAt string `json:"created_at"`
	}

	infos := make([]historyInfo, len(entries))
	for i := range entries {
		infos[i] = historyInfo{
			Query:     entries[i].Query,
			Results:   entries[i].Results,
			CreatedAt: entries[i].CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractHistoryLimit extracts the entry count from a URI like ragdex://history/{limit}.
func extractHistoryLimit(uri string) int {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return 0
	}

	limit, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return 0
	}

	return limit
}
