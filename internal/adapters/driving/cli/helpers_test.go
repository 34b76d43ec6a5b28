package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockRagService is a configurable driving.RagService for command tests.
type mockRagService struct {
	syncReport *domain.SyncReport
	syncErr    error
	syncOpts   []domain.SyncOptions

	searchOutput *domain.SearchOutput
	searchErr    error
	searchQuery  string
	searchOpts   domain.SearchOptions

	info    *domain.Info
	infoErr error

	sources    []string
	sourcesErr error

	addedPaths   []string
	addErr       error
	removedPaths []string
	removeErr    error

	rerankModel string
	rerankErr   error
	topK        int
	topKErr     error

	history      []domain.HistoryEntry
	historyErr   error
	historyLimit int

	closed bool
}

var _ driving.RagService = (*mockRagService)(nil)

func (m *mockRagService) Sync(_ context.Context, opts domain.SyncOptions) (*domain.SyncReport, error) {
	m.syncOpts = append(m.syncOpts, opts)
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	return m.syncReport, nil
}

func (m *mockRagService) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchOutput, error) {
	m.searchQuery = query
	m.searchOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchOutput, nil
}

func (m *mockRagService) Info(_ context.Context) (*domain.Info, error) {
	return m.info, m.infoErr
}

func (m *mockRagService) Sources(_ context.Context) ([]string, error) {
	return m.sources, m.sourcesErr
}

func (m *mockRagService) AddSource(_ context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error) {
	m.addedPaths = append(m.addedPaths, path)
	m.syncOpts = append(m.syncOpts, opts)
	if m.addErr != nil {
		return nil, m.addErr
	}
	return m.syncReport, nil
}

func (m *mockRagService) RemoveSource(_ context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error) {
	m.removedPaths = append(m.removedPaths, path)
	m.syncOpts = append(m.syncOpts, opts)
	if m.removeErr != nil {
		return nil, m.removeErr
	}
	return m.syncReport, nil
}

func (m *mockRagService) SetRerankerModel(_ context.Context, model string) error {
	if m.rerankErr != nil {
		return m.rerankErr
	}
	m.rerankModel = model
	return nil
}

func (m *mockRagService) SetTopK(_ context.Context, topK int) error {
	if m.topKErr != nil {
		return m.topKErr
	}
	m.topK = topK
	return nil
}

func (m *mockRagService) History(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.historyLimit = limit
	return m.history, m.historyErr
}

func (m *mockRagService) Close() error {
	m.closed = true
	return nil
}

// setupTestServices injects a mock service with canned data and returns
// it together with a cleanup restoring the previous state.
func setupTestServices() (*mockRagService, func()) {
	mock := &mockRagService{
		syncReport: &domain.SyncReport{
			RunID:     "test-run",
			Added:     2,
			Deleted:   1,
			Unchanged: 3,
			Chunks:    9,
			Duration:  42 * time.Millisecond,
		},
		searchOutput: &domain.SearchOutput{
			Text: "alpha text\n\nbravo text",
			IDs: []domain.DocumentID{
				domain.NewDocumentID(0, 0),
				domain.NewDocumentID(1, 0),
			},
			Results: []domain.SearchResult{
				{ID: domain.NewDocumentID(0, 0), Path: "docs/alpha.md", Text: "alpha text", Score: 0.91},
				{ID: domain.NewDocumentID(1, 0), Path: "docs/bravo.md", Text: "bravo text", Score: 0.52},
			},
			Sources: []string{"docs/alpha.md", "docs/bravo.md"},
		},
		info: &domain.Info{
			StorePath: "/tmp/ragdex/corpus.yaml",
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
		sources: []string{"docs/**/*.md"},
		history: []domain.HistoryEntry{
			{ID: 2, Query: "kayak routes", Results: 3, CreatedAt: time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)},
			{ID: 1, Query: "river safety", Results: 1, CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		},
	}

	prevService := ragService
	prevCommands := loaderCommands
	ragService = mock

	return mock, func() {
		ragService = prevService
		loaderCommands = prevCommands
	}
}
