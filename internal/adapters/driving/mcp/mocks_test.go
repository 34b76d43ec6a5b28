package mcp

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
)

// mockRagService is a mock implementation of driving.RagService.
type mockRagService struct {
	syncReport   *domain.SyncReport
	syncOpts     []domain.SyncOptions
	searchOutput *domain.SearchOutput
	searchQuery  string
	searchOpts   domain.SearchOptions
	info         *domain.Info
	sources      []string
	history      []domain.HistoryEntry
	historyLimit int
	err          error
}

var _ driving.RagService = (*mockRagService)(nil)

func (m *mockRagService) Sync(_ context.Context, opts domain.SyncOptions) (*domain.SyncReport, error) {
	m.syncOpts = append(m.syncOpts, opts)
	return m.syncReport, m.err
}

func (m *mockRagService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchOutput, error) {
	m.searchQuery = query
	m.searchOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.searchOutput == nil {
		return &domain.SearchOutput{}, nil
	}
	return m.searchOutput, nil
}

func (m *mockRagService) Info(_ context.Context) (*domain.Info, error) {
	return m.info, m.err
}

func (m *mockRagService) Sources(_ context.Context) ([]string, error) {
	return m.sources, m.err
}

func (m *mockRagService) AddSource(
	_ context.Context,
	_ string,
	opts domain.SyncOptions,
) (*domain.SyncReport, error) {
	m.syncOpts = append(m.syncOpts, opts)
	return m.syncReport, m.err
}

func (m *mockRagService) RemoveSource(
	_ context.Context,
	_ string,
	opts domain.SyncOptions,
) (*domain.SyncReport, error) {
	m.syncOpts = append(m.syncOpts, opts)
	return m.syncReport, m.err
}

func (m *mockRagService) SetRerankerModel(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRagService) SetTopK(_ context.Context, _ int) error {
	return m.err
}

func (m *mockRagService) History(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.historyLimit = limit
	return m.history, m.err
}

func (m *mockRagService) Close() error {
	return m.err
}
