package driven

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// HistoryStore records past searches. This is an optional service - when
// nil, history commands and recall are disabled.
type HistoryStore interface {
	// Append records a search.
	Append(ctx context.Context, query string, results int) error

	// List returns up to limit entries, most recent first.
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}
