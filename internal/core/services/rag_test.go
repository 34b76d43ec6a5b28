package services

import (
	"context"
	"crypto/sha256"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
	"github.com/custodia-labs/ragdex/internal/index/bm25"
)

// --- Mock implementations ---
// Shared by the rag, sync and search tests in this package.

// mockLoader implements driven.SourceLoader over in-memory maps.
type mockLoader struct {
	expand      map[string][]string        // source -> loadable unit paths
	content     map[string]string          // unit path -> document text
	meta        map[string]domain.Metadata // unit path -> extra metadata
	loadErrs    map[string]error           // unit path -> load failure
	resolveErrs map[string]error           // source -> resolution failure
}

func newMockLoader() *mockLoader {
	return &mockLoader{
		expand:      make(map[string][]string),
		content:     make(map[string]string),
		meta:        make(map[string]domain.Metadata),
		loadErrs:    make(map[string]error),
		resolveErrs: make(map[string]error),
	}
}

func (m *mockLoader) Resolve(_ context.Context, sources []string) ([]driven.ResolvedSource, []error) {
	var resolved []driven.ResolvedSource
	var errs []error
	for _, source := range sources {
		if err, ok := m.resolveErrs[source]; ok {
			errs = append(errs, err)
			continue
		}
		units, ok := m.expand[source]
		if !ok {
			units = []string{source}
		}
		for _, unit := range units {
			resolved = append(resolved, driven.ResolvedSource{Kind: driven.SourceLocal, Path: unit})
		}
	}
	return resolved, errs
}

func (m *mockLoader) Load(_ context.Context, src driven.ResolvedSource) ([]domain.RawDocument, error) {
	if err, ok := m.loadErrs[src.Path]; ok {
		return nil, err
	}
	text, ok := m.content[src.Path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	meta := domain.Metadata{}.
		Set(domain.PathMetadata, src.Path).
		Set(domain.ExtensionMetadata, "md")
	for _, e := range m.meta[src.Path] {
		meta = meta.Set(e.Key, e.Value)
	}
	return []domain.RawDocument{{Path: src.Path, Text: text, Metadata: meta}}, nil
}

// mockEmbedder implements driven.EmbeddingService with deterministic
// vectors derived from the text.
type mockEmbedder struct {
	mu        stdsync.Mutex
	batches   [][]string
	failures  int // first n Embed calls fail
	model     string
	batchSize int
	maxTokens int
	closed    bool
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string, _ bool) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("embedding backend unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vectors[i] = []float32{float32(sum[0]), float32(sum[1]), float32(sum[2])}
	}
	return vectors, nil
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) MaxInputTokens() int { return m.maxTokens }

func (m *mockEmbedder) DefaultBatchSize() int {
	if m.batchSize > 0 {
		return m.batchSize
	}
	return 100
}

func (m *mockEmbedder) Close() error {
	m.closed = true
	return nil
}

func (m *mockEmbedder) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func (m *mockEmbedder) batchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.batches))
	for i, batch := range m.batches {
		sizes[i] = len(batch)
	}
	return sizes
}

// mockVector implements driven.VectorIndex, recording rebuilds and
// serving preset hits.
type mockVector struct {
	mu          stdsync.Mutex
	docs        []driven.VectorDocument
	rebuilds    int
	hits        []driven.Hit
	searchErr   error
	gotTopK     int
	gotMinScore float64
	closed      bool
}

func (m *mockVector) Rebuild(_ context.Context, docs []driven.VectorDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append([]driven.VectorDocument(nil), docs...)
	m.rebuilds++
	return nil
}

func (m *mockVector) Search(_ context.Context, _ []float32, topK int, minScore float64) ([]driven.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.gotTopK = topK
	m.gotMinScore = minScore
	hits := m.hits
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return append([]driven.Hit(nil), hits...), nil
}

func (m *mockVector) Close() error {
	m.closed = true
	return nil
}

// mockReranker implements driven.Reranker, recording the request.
type mockReranker struct {
	results  []driven.RankedDocument
	err      error
	gotQuery string
	gotDocs  []string
	gotTopN  int
	closed   bool
}

func (m *mockReranker) Rerank(_ context.Context, query string, documents []string, topN int) ([]driven.RankedDocument, error) {
	m.gotQuery = query
	m.gotDocs = append([]string(nil), documents...)
	m.gotTopN = topN
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockReranker) ModelName() string { return "mock-rerank" }

func (m *mockReranker) Close() error {
	m.closed = true
	return nil
}

// mockRerankerFactory hands out the same reranker for every model and
// records the requested model name.
type mockRerankerFactory struct {
	reranker *mockReranker
	err      error
	gotModel string
}

func (f *mockRerankerFactory) build(model string) (driven.Reranker, error) {
	f.gotModel = model
	if f.err != nil {
		return nil, f.err
	}
	return f.reranker, nil
}

// --- Test fixture ---

type ragFixture struct {
	rag       *Rag
	loader    *mockLoader
	embedder  *mockEmbedder
	vector    *mockVector
	store     *memory.DataStore
	history   *memory.HistoryStore
	rerankers *mockRerankerFactory
}

// newTestRag builds a Rag over in-memory collaborators, with retry
// backoff shrunk to keep retry tests fast.
func newTestRag(t *testing.T, loader *mockLoader) *ragFixture {
	t.Helper()

	f := &ragFixture{
		loader:    loader,
		embedder:  &mockEmbedder{},
		vector:    &mockVector{},
		store:     memory.NewDataStore(),
		history:   memory.NewHistoryStore(),
		rerankers: &mockRerankerFactory{reranker: &mockReranker{}},
	}

	rag, err := New(context.Background(), Config{
		Store:     f.store,
		Loader:    loader,
		Embedding: f.embedder,
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    f.vector,
		History:   f.history,
		Rerankers: f.rerankers.build,
	})
	require.NoError(t, err)
	rag.backoffUnit = time.Millisecond

	f.rag = rag
	return f
}

// twoDocLoader returns a loader with one source expanding to two files.
func twoDocLoader() *mockLoader {
	loader := newMockLoader()
	loader.expand["docs"] = []string{"docs/alpha.md", "docs/bravo.md"}
	loader.content["docs/alpha.md"] = "alpha kayak river"
	loader.content["docs/bravo.md"] = "bravo canoe river"
	return loader
}

// registerSources adds source paths without triggering a sync.
func registerSources(f *ragFixture, sources ...string) {
	for _, source := range sources {
		f.rag.corpus.AddPath(source)
	}
}

// --- Tests ---

func TestNew_RequiresCollaborators(t *testing.T) {
	base := Config{
		Store:     memory.NewDataStore(),
		Loader:    newMockLoader(),
		Embedding: &mockEmbedder{},
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    &mockVector{},
	}

	for name, clear := range map[string]func(*Config){
		"store":     func(c *Config) { c.Store = nil },
		"loader":    func(c *Config) { c.Loader = nil },
		"embedding": func(c *Config) { c.Embedding = nil },
		"keyword":   func(c *Config) { c.Keyword = nil },
		"vector":    func(c *Config) { c.Vector = nil },
	} {
		cfg := base
		clear(&cfg)
		_, err := New(context.Background(), cfg)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestNew_CreatesEmptyCorpus(t *testing.T) {
	f := newTestRag(t, newMockLoader())

	info, err := f.rag.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mock-embed", info.Settings.EmbeddingModel)
	assert.Equal(t, domain.DefaultChunkSize, info.Settings.ChunkSize)
	assert.Equal(t, domain.DefaultTopK, info.Settings.TopK)
	assert.Zero(t, info.Files)
	assert.Zero(t, info.Chunks)

	// Nothing is persisted until a sync succeeds.
	assert.False(t, f.store.Exists())
}

func TestNew_LoadsPersistedCorpus(t *testing.T) {
	loader := twoDocLoader()
	f := newTestRag(t, loader)
	registerSources(f, "docs")
	_, err := f.rag.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)

	vector := &mockVector{}
	rag, err := New(context.Background(), Config{
		Store:     f.store,
		Loader:    loader,
		Embedding: &mockEmbedder{},
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    vector,
	})
	require.NoError(t, err)

	info, err := rag.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Files)
	assert.Equal(t, 2, info.Chunks)
	assert.Equal(t, 2, info.Vectors)
	assert.Equal(t, []string{"docs"}, info.Sources)

	// Both indices were rebuilt from the loaded corpus.
	assert.Len(t, vector.docs, 2)
}

func TestNew_RejectsEmbeddingModelMismatch(t *testing.T) {
	f := newTestRag(t, twoDocLoader())
	registerSources(f, "docs")
	_, err := f.rag.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)

	_, err = New(context.Background(), Config{
		Store:     f.store,
		Loader:    f.loader,
		Embedding: &mockEmbedder{model: "other-model"},
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    &mockVector{},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "mock-embed")
	assert.Contains(t, err.Error(), "other-model")
}

func TestAddSource_SyncsAndRegisters(t *testing.T) {
	f := newTestRag(t, twoDocLoader())

	report, err := f.rag.AddSource(context.Background(), "docs", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)

	sources, err := f.rag.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, sources)
	assert.Equal(t, 1, f.store.Saves())
}

func TestAddSource_RejectsDuplicate(t *testing.T) {
	f := newTestRag(t, twoDocLoader())
	_, err := f.rag.AddSource(context.Background(), "docs", domain.SyncOptions{})
	require.NoError(t, err)

	_, err = f.rag.AddSource(context.Background(), "docs", domain.SyncOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddSource_RejectsEmptyPath(t *testing.T) {
	f := newTestRag(t, newMockLoader())
	_, err := f.rag.AddSource(context.Background(), "", domain.SyncOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddSource_RollsBackOnFailedSync(t *testing.T) {
	loader := newMockLoader()
	loader.expand["docs"] = []string{"docs/alpha.md"}
	loader.loadErrs["docs/alpha.md"] = errors.New("permission denied")
	f := newTestRag(t, loader)

	_, err := f.rag.AddSource(context.Background(), "docs", domain.SyncOptions{})
	require.ErrorIs(t, err, domain.ErrAborted)

	sources, err := f.rag.Sources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Zero(t, f.store.Saves())
}

func TestRemoveSource_DropsItsFiles(t *testing.T) {
	loader := newMockLoader()
	loader.expand["docs"] = []string{"docs/alpha.md"}
	loader.expand["notes"] = []string{"notes/bravo.md"}
	loader.content["docs/alpha.md"] = "alpha kayak"
	loader.content["notes/bravo.md"] = "bravo canoe"
	f := newTestRag(t, loader)
	registerSources(f, "docs", "notes")
	_, err := f.rag.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)

	report, err := f.rag.RemoveSource(context.Background(), "notes", domain.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 1, report.Unchanged)

	sources, err := f.rag.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, sources)

	info, err := f.rag.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, info.Files)
}

func TestRemoveSource_UnknownSource(t *testing.T) {
	f := newTestRag(t, newMockLoader())
	_, err := f.rag.RemoveSource(context.Background(), "nope", domain.SyncOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveSource_RestoredWhenCorpusWouldEmpty(t *testing.T) {
	f := newTestRag(t, twoDocLoader())
	registerSources(f, "docs")
	_, err := f.rag.Sync(context.Background(), domain.SyncOptions{})
	require.NoError(t, err)

	// Removing the only source leaves an empty corpus, which a sync
	// refuses to persist; the registration is restored.
	_, err = f.rag.RemoveSource(context.Background(), "docs", domain.SyncOptions{})
	require.ErrorIs(t, err, domain.ErrNoDocuments)

	sources, err := f.rag.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, sources)
}

func TestSetTopK(t *testing.T) {
	f := newTestRag(t, newMockLoader())

	err := f.rag.SetTopK(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.rag.SetTopK(context.Background(), 9))

	info, err := f.rag.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, info.Settings.TopK)
	assert.Equal(t, 1, f.store.Saves())
}

func TestSetRerankerModel(t *testing.T) {
	f := newTestRag(t, newMockLoader())

	require.NoError(t, f.rag.SetRerankerModel(context.Background(), "rerank-lite"))

	info, err := f.rag.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rerank-lite", info.Settings.RerankerModel)
	assert.Equal(t, 1, f.store.Saves())

	// Empty reverts to rank fusion.
	require.NoError(t, f.rag.SetRerankerModel(context.Background(), ""))
	info, err = f.rag.Info(context.Background())
	require.NoError(t, err)
	assert.Empty(t, info.Settings.RerankerModel)
}

func TestHistory_WithoutStore(t *testing.T) {
	rag, err := New(context.Background(), Config{
		Store:     memory.NewDataStore(),
		Loader:    newMockLoader(),
		Embedding: &mockEmbedder{},
		Keyword:   bm25.New(bm25.DefaultOptions()),
		Vector:    &mockVector{},
	})
	require.NoError(t, err)

	entries, err := rag.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestClose_ReleasesResources(t *testing.T) {
	f := newTestRag(t, newMockLoader())

	require.NoError(t, f.rag.Close())

	assert.True(t, f.vector.closed)
	assert.True(t, f.embedder.closed)
}
