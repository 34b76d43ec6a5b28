package driving

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// RagService is the complete application surface: syncing the corpus,
// searching it, and inspecting or adjusting its configuration.
type RagService interface {
	// Sync loads every registered source, re-chunks and re-embeds
	// whatever changed, and persists the result.
	Sync(ctx context.Context, opts domain.SyncOptions) (*domain.SyncReport, error)

	// Search runs a hybrid query against the synced corpus.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchOutput, error)

	// Info summarises the corpus.
	Info(ctx context.Context) (*domain.Info, error)

	// Sources lists the registered document paths.
	Sources(ctx context.Context) ([]string, error)

	// AddSource registers a source and syncs it in.
	AddSource(ctx context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error)

	// RemoveSource deregisters a source and syncs its files out.
	RemoveSource(ctx context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error)

	// SetRerankerModel changes the default reranker and persists it.
	// Empty reverts to rank fusion.
	SetRerankerModel(ctx context.Context, model string) error

	// SetTopK changes the default result count and persists it.
	SetTopK(ctx context.Context, topK int) error

	// History returns up to limit past searches, most recent first.
	History(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Close releases index and service resources.
	Close() error
}
