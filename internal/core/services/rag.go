package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// Ensure Rag implements the interface.
var _ driving.RagService = (*Rag)(nil)

// DefaultRetryLimit is how many attempts each embedding batch gets.
const DefaultRetryLimit = 2

// RerankerFactory builds a reranker bound to the named model. The caller
// owns the returned instance and closes it after use.
type RerankerFactory func(model string) (driven.Reranker, error)

// Config wires the collaborators a Rag instance needs.
type Config struct {
	// Store persists the corpus (required).
	Store driven.DataStore

	// Loader resolves and loads document sources (required).
	Loader driven.SourceLoader

	// Embedding generates chunk and query embeddings (required).
	Embedding driven.EmbeddingService

	// Keyword is the exact-term index (required).
	Keyword driven.KeywordIndex

	// Vector is the semantic index (required).
	Vector driven.VectorIndex

	// History records past searches. Optional.
	History driven.HistoryStore

	// Rerankers builds rerankers on demand. Optional - without it any
	// search requesting a reranker model fails.
	Rerankers RerankerFactory

	// Settings configure a fresh corpus when the store holds none.
	Settings domain.Settings

	// RetryLimit is the number of attempts per embedding batch
	// (default 2).
	RetryLimit int
}

// Rag owns one corpus and its derived indices. Searches run concurrently
// under a read lock; a sync mutates the corpus, rebuilds both indices and
// saves the store under the write lock, so searches always see a fully
// consistent state.
type Rag struct {
	store     driven.DataStore
	loader    driven.SourceLoader
	embedding driven.EmbeddingService
	keyword   driven.KeywordIndex
	vector    driven.VectorIndex
	history   driven.HistoryStore
	rerankers RerankerFactory

	retryLimit  int
	backoffUnit time.Duration

	mu      sync.RWMutex
	corpus  *domain.Corpus
	syncing atomic.Bool
}

// New creates a Rag service. When the store holds a persisted corpus it
// is loaded and both indices are rebuilt from it; otherwise an empty
// corpus is created from cfg.Settings, ready for a first sync.
func New(ctx context.Context, cfg Config) (*Rag, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: data store is required", domain.ErrInvalidInput)
	}
	if cfg.Loader == nil {
		return nil, fmt.Errorf("%w: source loader is required", domain.ErrInvalidInput)
	}
	if cfg.Embedding == nil {
		return nil, fmt.Errorf("%w: embedding service is required", domain.ErrInvalidInput)
	}
	if cfg.Keyword == nil || cfg.Vector == nil {
		return nil, fmt.Errorf("%w: both indices are required", domain.ErrInvalidInput)
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = DefaultRetryLimit
	}

	r := &Rag{
		store:       cfg.Store,
		loader:      cfg.Loader,
		embedding:   cfg.Embedding,
		keyword:     cfg.Keyword,
		vector:      cfg.Vector,
		history:     cfg.History,
		rerankers:   cfg.Rerankers,
		retryLimit:  cfg.RetryLimit,
		backoffUnit: time.Second,
	}

	if cfg.Store.Exists() {
		corpus, err := cfg.Store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		// A corpus is bound to the model whose vectors it holds.
		if corpus.Settings.EmbeddingModel != cfg.Embedding.ModelName() {
			return nil, fmt.Errorf("%w: corpus was built with embedding model %q, configured model is %q",
				domain.ErrInvalidInput, corpus.Settings.EmbeddingModel, cfg.Embedding.ModelName())
		}
		r.corpus = corpus
		logger.Debug("Loaded corpus from %s: %d files, %d chunks",
			cfg.Store.Path(), corpus.FileCount(), corpus.DocumentCount())
	} else {
		settings := cfg.Settings
		if settings.EmbeddingModel == "" {
			settings.EmbeddingModel = cfg.Embedding.ModelName()
		}
		settings.Normalize()
		if err := settings.Validate(); err != nil {
			return nil, err
		}
		r.corpus = domain.NewCorpus(settings)
		logger.Debug("Created empty corpus for model %s", settings.EmbeddingModel)
	}

	if err := r.rebuildIndices(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Info summarises the corpus.
func (r *Rag) Info(_ context.Context) (*domain.Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return &domain.Info{
		StorePath: r.store.Path(),
		Settings:  r.corpus.Settings,
		Sources:   append([]string(nil), r.corpus.DocumentPaths...),
		Files:     r.corpus.FileCount(),
		Chunks:    r.corpus.DocumentCount(),
		Vectors:   len(r.corpus.Vectors),
	}, nil
}

// Sources lists the registered document paths.
func (r *Rag) Sources(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.corpus.DocumentPaths...), nil
}

// AddSource registers a source and syncs it in. On a failed sync the
// registration is rolled back so memory stays in line with the store.
func (r *Rag) AddSource(ctx context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: source path is empty", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	added := r.corpus.AddPath(path)
	r.mu.Unlock()
	if !added {
		return nil, fmt.Errorf("%w: source already registered: %s", domain.ErrInvalidInput, path)
	}

	report, err := r.Sync(ctx, opts)
	if err != nil {
		r.mu.Lock()
		r.corpus.RemovePath(path)
		r.mu.Unlock()
		return nil, err
	}
	return report, nil
}

// RemoveSource deregisters a source and syncs its files out. On a failed
// sync the registration is restored.
func (r *Rag) RemoveSource(ctx context.Context, path string, opts domain.SyncOptions) (*domain.SyncReport, error) {
	r.mu.Lock()
	removed := r.corpus.RemovePath(path)
	r.mu.Unlock()
	if !removed {
		return nil, fmt.Errorf("%w: source not registered: %s", domain.ErrNotFound, path)
	}

	report, err := r.Sync(ctx, opts)
	if err != nil {
		r.mu.Lock()
		r.corpus.AddPath(path)
		r.mu.Unlock()
		return nil, err
	}
	return report, nil
}

// SetRerankerModel changes the default reranker and persists it. Empty
// reverts to rank fusion.
func (r *Rag) SetRerankerModel(ctx context.Context, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.corpus.Settings.RerankerModel = model
	if err := r.store.Save(ctx, r.corpus); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	return nil
}

// SetTopK changes the default result count and persists it.
func (r *Rag) SetTopK(ctx context.Context, topK int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.corpus.Settings.TopK = topK
	if err := r.store.Save(ctx, r.corpus); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	return nil
}

// History returns up to limit past searches, most recent first.
func (r *Rag) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if r.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	entries, err := r.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Close releases index and service resources.
func (r *Rag) Close() error {
	return errors.Join(
		r.vector.Close(),
		r.embedding.Close(),
	)
}

// rebuildIndices rebuilds both derived indices from the corpus. Callers
// must hold the write lock or otherwise exclude mutation.
func (r *Rag) rebuildIndices(ctx context.Context) error {
	docs := make([]driven.IndexDocument, 0, r.corpus.DocumentCount())
	vdocs := make([]driven.VectorDocument, 0, len(r.corpus.Vectors))
	for _, id := range r.corpus.DocumentIDs() {
		chunk, ok := r.corpus.Document(id)
		if !ok {
			continue
		}
		docs = append(docs, driven.IndexDocument{ID: id, Text: chunk.Text})
		if vec, ok := r.corpus.Vectors[id]; ok {
			vdocs = append(vdocs, driven.VectorDocument{ID: id, Vector: vec})
		}
	}

	if err := r.keyword.Rebuild(ctx, docs); err != nil {
		return fmt.Errorf("rebuild keyword index: %w", err)
	}
	if err := r.vector.Rebuild(ctx, vdocs); err != nil {
		return fmt.Errorf("rebuild vector index: %w", err)
	}
	return nil
}
