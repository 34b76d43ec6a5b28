package driven

import (
	"context"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// SourceKind identifies which loader a resolved source is dispatched to.
type SourceKind string

// Source kinds produced by classification.
const (
	// SourceLocal is a single local file resolved from a path or glob.
	SourceLocal SourceKind = "file"

	// SourceURL is a single web page fetched over HTTP.
	SourceURL SourceKind = "url"

	// SourceCrawl is a site crawl rooted at a URL (configured with a
	// trailing "**").
	SourceCrawl SourceKind = "crawl"

	// SourceProtocol is a scheme-qualified path ("scheme:rest") handled
	// by the built-in github loader or a configured loader command.
	SourceProtocol SourceKind = "protocol"
)

// ResolvedSource is one loadable unit produced by classifying and
// expanding a configured source string. A local glob expands to one
// ResolvedSource per matched file; URLs and custom schemes resolve to a
// single unit that may itself yield many documents.
type ResolvedSource struct {
	// Kind selects the loader.
	Kind SourceKind

	// Path is the expanded path, URL or scheme-qualified locator passed
	// to the loader and shown in progress output.
	Path string
}

// SourceLoader turns configured source strings into raw documents.
// Resolution and loading are separate so callers can report progress
// across the expanded unit list.
type SourceLoader interface {
	// Resolve classifies each source string and expands globs into
	// individual loadable units. Units are grouped by kind (crawls,
	// then URLs, then protocol paths, then local files) so load order
	// is deterministic; glob matches are sorted within their source.
	// Per-source resolution failures are collected, not fatal.
	Resolve(ctx context.Context, sources []string) ([]ResolvedSource, []error)

	// Load fetches every document one resolved unit yields. Local files
	// and single URLs yield one document; crawls and external loader
	// commands may yield many.
	Load(ctx context.Context, src ResolvedSource) ([]domain.RawDocument, error)
}
