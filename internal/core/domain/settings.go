package domain

import "fmt"

// Default indexing parameters applied when the configuration leaves them
// unset.
const (
	// DefaultChunkSize is the fallback chunk size when neither the
	// configuration nor the embedding model suggests one.
	DefaultChunkSize = 1000

	// DefaultTopK is the number of results a search returns by default.
	DefaultTopK = 5
)

// Settings holds the per-corpus indexing and retrieval configuration.
// It is persisted as part of the corpus so a saved index remains
// self-describing: reopening it never silently changes chunking or the
// embedding model.
type Settings struct {
	// EmbeddingModel identifies the model whose vectors populate the
	// corpus. Changing it requires a full rebuild.
	EmbeddingModel string

	// ChunkSize is the maximum chunk length in bytes.
	ChunkSize int

	// ChunkOverlap is the target overlap carried between adjacent chunks.
	ChunkOverlap int

	// RerankerModel selects an external reranker for search result
	// ordering. Empty means rank fusion is used instead.
	RerankerModel string

	// TopK is the default number of search results.
	TopK int

	// BatchSize caps how many chunks are embedded per request.
	// Zero means the embedding model's own default applies.
	BatchSize int
}

// Normalize fills unset fields with their defaults. Overlap defaults to
// a twentieth of the chunk size.
func (s *Settings) Normalize() {
	if s.ChunkSize <= 0 {
		s.ChunkSize = DefaultChunkSize
	}
	if s.ChunkOverlap <= 0 {
		s.ChunkOverlap = s.ChunkSize / 20
	}
	if s.TopK <= 0 {
		s.TopK = DefaultTopK
	}
}

// Validate reports the first configuration problem, if any.
func (s Settings) Validate() error {
	if s.EmbeddingModel == "" {
		return fmt.Errorf("%w: embedding model is required", ErrInvalidInput)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative", ErrInvalidInput)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be smaller than chunk size", ErrInvalidInput)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", ErrInvalidInput)
	}
	if s.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must not be negative", ErrInvalidInput)
	}
	return nil
}

// EmbedBatchSize resolves the number of chunks embedded per request.
// The configured batch size (or the model default when unset) is capped
// by how many chunks fit the model's input window, and never drops
// below one.
func (s Settings) EmbedBatchSize(modelDefault, maxInputTokens int) int {
	batch := s.BatchSize
	if batch == 0 {
		batch = modelDefault
	}
	if maxInputTokens > 0 && s.ChunkSize > 0 {
		byWindow := maxInputTokens / s.ChunkSize
		if batch == 0 || byWindow < batch {
			batch = byWindow
		}
	}
	if batch < 1 {
		batch = 1
	}
	return batch
}
