package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// Crawler defaults. A crawl never leaves the start URL's directory, so
// the caps exist to bound pathological sites, not to shape the result.
const (
	DefaultMaxPages          = 100
	DefaultMaxDepth          = 5
	DefaultRequestsPerSecond = 2.0
)

// Page is one crawled page: its final URL and extracted text. The JSON
// shape doubles as the output contract for recursive_url loader
// commands.
type Page struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// CrawlerOptions bound a site crawl.
type CrawlerOptions struct {
	// MaxPages caps how many pages a single crawl fetches.
	MaxPages int

	// MaxDepth caps how many links deep the crawl follows from the
	// start URL.
	MaxDepth int

	// RequestsPerSecond throttles fetches.
	RequestsPerSecond float64
}

// Crawler walks a site breadth-first from a start URL, keeping to pages
// under the start URL's directory. Fetched bodies are cached so
// re-syncing an unchanged site does not re-download every page.
type Crawler struct {
	client   *http.Client
	cache    driven.FetchCache
	limiter  *rate.Limiter
	maxPages int
	maxDepth int
}

// NewCrawler creates a crawler. cache may be nil, in which case every
// page is fetched fresh.
func NewCrawler(client *http.Client, cache driven.FetchCache, opts CrawlerOptions) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return &Crawler{
		client:   client,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		maxPages: opts.MaxPages,
		maxDepth: opts.MaxDepth,
	}
}

// crawlItem is one queued URL with its link distance from the start.
type crawlItem struct {
	url   string
	depth int
}

// Crawl fetches the start URL and every same-section page reachable
// from it, breadth-first, and returns their extracted text. Pages that
// fail to fetch are logged and skipped; an unreachable start URL fails
// the crawl.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]Page, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", startURL, err)
	}
	root := normalizeStartURL(start)
	logger.Info("crawling %s", start.String())

	queue := []crawlItem{{url: start.String(), depth: 0}}
	visited := map[string]bool{canonicalPageURL(start.String()): true}

	var pages []Page
	for len(queue) > 0 && len(pages) < c.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]

		body, err := c.fetchPage(ctx, item.url)
		if err != nil {
			if len(pages) == 0 && len(queue) == 0 {
				return nil, fmt.Errorf("crawl %s: %w", item.url, err)
			}
			logger.Warn("crawl %s: %v", item.url, err)
			continue
		}
		logger.Debug("crawled %s", item.url)

		if text := stripHTML(body); text != "" {
			pages = append(pages, Page{Path: item.url, Text: text})
		}

		if item.depth >= c.maxDepth {
			continue
		}
		page, err := url.Parse(item.url)
		if err != nil {
			continue
		}
		for _, link := range extractLinks(page, body) {
			if !strings.HasPrefix(link, root) {
				continue
			}
			key := canonicalPageURL(link)
			if visited[key] {
				continue
			}
			visited[key] = true
			queue = append(queue, crawlItem{url: link, depth: item.depth + 1})
		}
	}
	return pages, nil
}

// fetchPage returns a page body, from the cache when possible.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) (string, error) {
	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, pageURL); err == nil && ok {
			return body, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("invalid status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	body := string(data)

	if c.cache != nil {
		if err := c.cache.Put(ctx, pageURL, body); err != nil {
			logger.Debug("cache %s: %v", pageURL, err)
		}
	}
	return body, nil
}

// normalizeStartURL reduces the start URL to the directory every
// crawled page must live under: query and fragment dropped, path
// trimmed to its last slash.
func normalizeStartURL(start *url.URL) string {
	u := *start
	u.RawQuery = ""
	u.Fragment = ""
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		u.Path = u.Path[:i+1]
	}
	return u.String()
}

// canonicalPageURL is the visited-set key: index pages and their
// directory count as one page.
func canonicalPageURL(pageURL string) string {
	pageURL = strings.TrimSuffix(pageURL, "index.html")
	pageURL = strings.TrimSuffix(pageURL, "index.htm")
	return strings.TrimSuffix(pageURL, "/")
}
