package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations may include:
//   - OpenAI-compatible APIs (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates one embedding per input text, in input order.
	// isQuery distinguishes retrieval queries from corpus passages for
	// models that embed the two asymmetrically.
	Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// MaxInputTokens returns the model's input window, used to cap how
	// many chunks are sent per request. Zero means unknown.
	MaxInputTokens() int

	// DefaultBatchSize returns the model's preferred batch size.
	DefaultBatchSize() int

	// Close releases resources.
	Close() error
}
