package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Ensure DataStore implements the interface.
var _ driven.DataStore = (*DataStore)(nil)

// DataStore is an in-memory implementation of driven.DataStore for testing.
// Corpora are deep-copied on both save and load so retained references
// cannot mutate stored state, matching the isolation of a file round trip.
type DataStore struct {
	mu     sync.RWMutex
	corpus *domain.Corpus
	saves  int
}

// NewDataStore creates a new in-memory corpus store.
func NewDataStore() *DataStore {
	return &DataStore{}
}

// Load returns a copy of the saved corpus.
func (s *DataStore) Load(ctx context.Context) (*domain.Corpus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.corpus == nil {
		return nil, domain.ErrNotFound
	}
	return copyCorpus(s.corpus), nil
}

// Save stores a copy of the corpus.
func (s *DataStore) Save(ctx context.Context, corpus *domain.Corpus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.corpus = copyCorpus(corpus)
	s.saves++
	return nil
}

// Exists reports whether a corpus has been saved.
func (s *DataStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus != nil
}

// Path returns a placeholder path.
func (s *DataStore) Path() string {
	return ":memory:"
}

// Saves returns how many times Save has been called.
func (s *DataStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// copyCorpus deep-copies every mutable part of a corpus.
func copyCorpus(corpus *domain.Corpus) *domain.Corpus {
	out := domain.NewCorpus(corpus.Settings)
	out.NextFileID = corpus.NextFileID
	out.DocumentPaths = append([]string(nil), corpus.DocumentPaths...)

	for id, file := range corpus.Files {
		chunks := make([]domain.Chunk, len(file.Chunks))
		for i, chunk := range file.Chunks {
			chunks[i] = domain.Chunk{Text: chunk.Text, Metadata: chunk.Metadata.Clone()}
		}
		out.Files[id] = &domain.File{Hash: file.Hash, Path: file.Path, Chunks: chunks}
	}

	for id, vector := range corpus.Vectors {
		out.Vectors[id] = append([]float32(nil), vector...)
	}

	return out
}
