package domain

import "time"

// SearchOptions tune a single query. Zero values fall back to the corpus
// settings.
type SearchOptions struct {
	// TopK overrides the number of results to return.
	TopK int

	// MinVectorScore drops vector matches with a cosine similarity at or
	// below this threshold.
	MinVectorScore float64

	// MinKeywordScore drops keyword matches with a score at or below
	// this threshold.
	MinKeywordScore float64

	// RerankModel overrides the corpus reranker for this query.
	RerankModel string
}

// SearchResult is one ranked chunk.
type SearchResult struct {
	// ID identifies the matched chunk.
	ID DocumentID

	// Path is the source path of the file the chunk belongs to.
	Path string

	// Text is the chunk content, including its document metadata header.
	Text string

	// Score is the fused or reranked relevance score.
	Score float64
}

// SearchOutput is the assembled answer context for one query.
type SearchOutput struct {
	// Text is every result's content joined with blank lines, ready to
	// hand to a language model.
	Text string

	// IDs lists the matched chunks in rank order.
	IDs []DocumentID

	// Results carries the ranked chunks with scores and paths.
	Results []SearchResult

	// Sources lists the distinct source paths in rank order.
	Sources []string
}

// SyncOptions control one synchronisation run.
type SyncOptions struct {
	// Refresh puts every stored file up for re-evaluation instead of
	// only vanished or changed paths. Files with unchanged content keep
	// their identifiers and vectors either way.
	Refresh bool

	// OnLoadErrors is consulted when some sources fail to load. It
	// receives the collected errors and reports whether to continue with
	// the sources that did load. Nil aborts on any load error.
	OnLoadErrors func(errs []error) bool

	// Progress receives human-readable progress lines. Nil disables
	// progress reporting.
	Progress func(line string)
}

// SyncReport summarises a completed synchronisation run.
type SyncReport struct {
	// RunID uniquely identifies the run in logs and history.
	RunID string

	// Added is the number of files loaded and embedded.
	Added int

	// Deleted is the number of files removed from the corpus.
	Deleted int

	// Unchanged is the number of files kept as-is.
	Unchanged int

	// Chunks is the corpus chunk count after the run.
	Chunks int

	// Duration is the wall-clock time the run took.
	Duration time.Duration
}

// HistoryEntry records one past search.
type HistoryEntry struct {
	// ID is the storage-assigned identifier, ascending with time.
	ID int64

	// Query is the search text as entered.
	Query string

	// Results is the number of chunks the search returned.
	Results int

	// CreatedAt is when the search ran.
	CreatedAt time.Time
}

// Info is a point-in-time summary of the corpus.
type Info struct {
	// StorePath is the location of the persisted corpus.
	StorePath string

	// Settings the corpus was built with.
	Settings Settings

	// Sources lists the registered document paths.
	Sources []string

	// Files is the number of loaded files.
	Files int

	// Chunks is the total number of indexed chunks.
	Chunks int

	// Vectors is the number of stored embeddings.
	Vectors int
}
