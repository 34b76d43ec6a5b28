package loaders

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/adapters/driven/storage/memory"
)

// fastCrawlOptions keeps crawl tests from sleeping on the rate limiter.
func fastCrawlOptions() CrawlerOptions {
	return CrawlerOptions{RequestsPerSecond: 10000}
}

// crawlSite serves a small site: the index links two local pages, one
// external page and a fragment link.
func crawlSite(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body>
			<p>Index page</p>
			<a href="/docs/install.html">Install</a>
			<a href="%s/docs/usage.html">Usage</a>
			<a href="/outside.html">Outside</a>
			<a href="https://elsewhere.invalid/page">External</a>
			<a href="#section">Fragment</a>
		</body></html>`, srv.URL)
	})
	mux.HandleFunc("/docs/install.html", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>Install guide</p></body></html>`)
	})
	mux.HandleFunc("/docs/usage.html", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>Usage guide</p><a href="/docs/install.html">Back</a></body></html>`)
	})
	mux.HandleFunc("/outside.html", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>Should not be crawled</p></body></html>`)
	})

	srv = httptest.NewServer(mux)
	return srv
}

// TestCrawler_SameSectionBound tests BFS staying under the start directory
func TestCrawler_SameSectionBound(t *testing.T) {
	var hits atomic.Int32
	srv := crawlSite(t, &hits)
	defer srv.Close()

	c := NewCrawler(srv.Client(), nil, fastCrawlOptions())
	pages, err := c.Crawl(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)

	require.Len(t, pages, 3)
	texts := map[string]string{}
	for _, p := range pages {
		texts[p.Path] = p.Text
	}
	assert.Contains(t, texts[srv.URL+"/docs/"], "Index page")
	assert.Contains(t, texts[srv.URL+"/docs/install.html"], "Install guide")
	assert.Contains(t, texts[srv.URL+"/docs/usage.html"], "Usage guide")

	// install.html is linked twice but fetched once; /outside.html and
	// the external host are never fetched.
	assert.Equal(t, int32(3), hits.Load())
}

// TestCrawler_MaxPages tests the page cap
func TestCrawler_MaxPages(t *testing.T) {
	var hits atomic.Int32
	srv := crawlSite(t, &hits)
	defer srv.Close()

	opts := fastCrawlOptions()
	opts.MaxPages = 1
	c := NewCrawler(srv.Client(), nil, opts)

	pages, err := c.Crawl(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

// TestCrawler_CacheReuse tests that cached bodies skip the network
func TestCrawler_CacheReuse(t *testing.T) {
	var hits atomic.Int32
	srv := crawlSite(t, &hits)
	defer srv.Close()

	cache := memory.NewFetchCache()
	c := NewCrawler(srv.Client(), cache, fastCrawlOptions())

	_, err := c.Crawl(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	first := hits.Load()
	assert.Equal(t, int32(3), first)

	pages, err := c.Crawl(context.Background(), srv.URL+"/docs/")
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, first, hits.Load(), "second crawl should be served from cache")
}

// TestCrawler_StartUnreachable tests that a dead start URL fails the crawl
func TestCrawler_StartUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCrawler(srv.Client(), nil, fastCrawlOptions())
	_, err := c.Crawl(context.Background(), srv.URL+"/docs/")
	require.Error(t, err)
}
