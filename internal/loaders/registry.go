package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.SourceLoader = (*Registry)(nil)

// DefaultFetchTimeout bounds individual page and file fetches.
const DefaultFetchTimeout = 16 * time.Second

// Config wires the registry's loaders together.
type Config struct {
	// Commands maps a file extension or source scheme to an external
	// loader command. The keys "url" and "recursive_url" override the
	// built-in URL fetcher and crawler.
	Commands map[string]string

	// Cache backs the crawler. Nil disables caching.
	Cache driven.FetchCache

	// Crawler bounds site crawls.
	Crawler CrawlerOptions

	// GitHubToken authenticates the github loader.
	GitHubToken string

	// GitHubBaseURL overrides the GitHub API endpoint.
	GitHubBaseURL string

	// Client is the HTTP client shared by the URL loader and crawler.
	// Nil gets a client with DefaultFetchTimeout.
	Client *http.Client
}

// Registry classifies sources and dispatches them to the built-in
// loaders and configured loader commands.
type Registry struct {
	commands map[string]string
	files    *FileLoader
	urls     *URLLoader
	crawler  *Crawler
	github   *GitHubLoader
}

// NewRegistry creates a registry from the given configuration.
func NewRegistry(cfg Config) (*Registry, error) {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if cfg.Commands == nil {
		cfg.Commands = map[string]string{}
	}

	github, err := NewGitHubLoader(GitHubConfig{
		Token:   cfg.GitHubToken,
		BaseURL: cfg.GitHubBaseURL,
		Client:  client,
	})
	if err != nil {
		return nil, err
	}

	return &Registry{
		commands: cfg.Commands,
		files:    NewFileLoader(cfg.Commands),
		urls:     NewURLLoader(client, cfg.Commands),
		crawler:  NewCrawler(client, cfg.Cache, cfg.Crawler),
		github:   github,
	}, nil
}

// Resolve classifies every source and expands local globs. Units come
// back grouped: crawls, then URLs, then protocol paths, then local
// files, preserving source order within each group. Failures to expand
// a local source are collected per source.
func (r *Registry) Resolve(ctx context.Context, sources []string) ([]driven.ResolvedSource, []error) {
	var crawls, urls, protocols, locals []driven.ResolvedSource
	var errs []error

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, []error{err}
		}
		switch {
		case IsURL(source) && strings.HasSuffix(source, "**"):
			crawls = append(crawls, driven.ResolvedSource{
				Kind: driven.SourceCrawl,
				Path: strings.TrimSuffix(source, "**"),
			})

		case IsURL(source):
			urls = append(urls, driven.ResolvedSource{Kind: driven.SourceURL, Path: source})

		case r.isProtocol(source):
			protocols = append(protocols, driven.ResolvedSource{Kind: driven.SourceProtocol, Path: source})

		default:
			paths, err := expandLocal(source)
			if err != nil {
				errs = append(errs, fmt.Errorf("resolve %s: %w", source, err))
				continue
			}
			for _, path := range paths {
				locals = append(locals, driven.ResolvedSource{Kind: driven.SourceLocal, Path: path})
			}
		}
	}

	units := make([]driven.ResolvedSource, 0, len(crawls)+len(urls)+len(protocols)+len(locals))
	units = append(units, crawls...)
	units = append(units, urls...)
	units = append(units, protocols...)
	units = append(units, locals...)
	return units, errs
}

// Load fetches the documents behind one resolved unit.
func (r *Registry) Load(ctx context.Context, src driven.ResolvedSource) ([]domain.RawDocument, error) {
	switch src.Kind {
	case driven.SourceLocal:
		doc, err := r.files.Load(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		return []domain.RawDocument{doc}, nil

	case driven.SourceURL:
		doc, err := r.urls.Load(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		return []domain.RawDocument{doc}, nil

	case driven.SourceCrawl:
		return r.loadCrawl(ctx, src.Path)

	case driven.SourceProtocol:
		return r.loadProtocol(ctx, src.Path)

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, src.Kind)
	}
}

// loadCrawl runs the built-in crawler, or the recursive_url loader
// command when one is configured.
func (r *Registry) loadCrawl(ctx context.Context, startURL string) ([]domain.RawDocument, error) {
	var pages []Page
	if command := r.commands[RecursiveURLLoader]; command != "" {
		out, err := runLoaderCommand(ctx, command, startURL)
		if err != nil {
			return nil, fmt.Errorf("crawl %s: %w", startURL, err)
		}
		if err := json.Unmarshal([]byte(out), &pages); err != nil {
			return nil, fmt.Errorf(`crawl %s: loader output must be [{"path":...,"text":...}]: %w`, startURL, err)
		}
	} else {
		var err error
		pages, err = r.crawler.Crawl(ctx, startURL)
		if err != nil {
			return nil, err
		}
	}

	docs := make([]domain.RawDocument, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, rawDocument(page.Path, page.Text, "md"))
	}
	return docs, nil
}

// loadProtocol routes a scheme-qualified source to the github loader or
// its configured loader command.
func (r *Registry) loadProtocol(ctx context.Context, source string) ([]domain.RawDocument, error) {
	scheme, rest, ok := SplitScheme(source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, source)
	}
	if scheme == GitHubScheme {
		return r.github.Load(ctx, rest)
	}

	command := r.commands[scheme]
	if command == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedScheme, scheme)
	}
	text, err := runLoaderCommand(ctx, command, rest)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	return []domain.RawDocument{rawDocument(source, text, domain.DefaultExtension)}, nil
}

// isProtocol reports whether a source is scheme-qualified and some
// loader serves its scheme. Unmatched schemes fall through to local
// path handling.
func (r *Registry) isProtocol(source string) bool {
	scheme, _, ok := SplitScheme(source)
	if !ok {
		return false
	}
	return scheme == GitHubScheme || r.commands[scheme] != ""
}
