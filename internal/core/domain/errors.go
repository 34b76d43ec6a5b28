package domain

import "errors"

// Sentinel errors shared across the core. Adapters wrap these with
// context via fmt.Errorf and %w so callers can match with errors.Is.
var (
	// ErrNotFound indicates a requested file, document or path does not
	// exist in the corpus or on disk.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed argument or configuration
	// value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDocuments indicates a sync finished with an empty corpus, or
	// a search ran against one.
	ErrNoDocuments = errors.New("no documents in corpus")

	// ErrAborted indicates the user declined to continue after load
	// failures, or the operation's context was cancelled.
	ErrAborted = errors.New("operation aborted")

	// ErrSyncInProgress indicates a sync is already running for this
	// corpus.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrUnsupportedScheme indicates a source uses a loader protocol no
	// registered loader handles.
	ErrUnsupportedScheme = errors.New("unsupported loader scheme")

	// ErrEmbeddingFailed indicates the embedding service gave up after
	// exhausting its retries.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates the embedding provider could not
	// be configured or reached at startup.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankFailed indicates the reranker rejected a request.
	ErrRerankFailed = errors.New("rerank failed")

	// ErrRerankUnavailable indicates the rerank provider could not be
	// configured.
	ErrRerankUnavailable = errors.New("rerank service unavailable")
)
