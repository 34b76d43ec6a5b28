package driven

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// DataStore persists a corpus between runs.
type DataStore interface {
	// Load reads the persisted corpus. Returns domain.ErrNotFound when
	// none has been saved yet.
	Load(ctx context.Context) (*domain.Corpus, error)

	// Save writes the corpus atomically, replacing any previous state.
	Save(ctx context.Context, corpus *domain.Corpus) error

	// Exists reports whether a persisted corpus is present.
	Exists() bool

	// Path returns the location of the persisted corpus.
	Path() string
}
