package driven

import "context"

// FetchCache stores fetched page content between crawler runs so
// unchanged pages are not downloaded twice. This is an optional service -
// when nil, every page is fetched fresh.
type FetchCache interface {
	// Get returns the cached content for a URL, if present.
	Get(ctx context.Context, url string) (string, bool, error)

	// Put stores content for a URL, replacing any previous entry.
	Put(ctx context.Context, url, content string) error
}
