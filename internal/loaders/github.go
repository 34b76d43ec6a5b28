package loaders

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/logger"
)

// GitHubScheme is the source scheme the github loader serves.
const GitHubScheme = "github"

// githubRequestRate throttles API calls proactively. The authenticated
// limit is 5000/hour; staying under 1.2/s leaves headroom for other
// consumers of the same token.
const githubRequestRate = 1.2

// maxBlobSize skips files larger than this; they are almost never
// prose worth indexing.
const maxBlobSize = 1024 * 1024

// binaryExtensions lists file extensions never worth downloading.
var binaryExtensions = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".bin": true, ".dat": true, ".db": true, ".sqlite": true,
	".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
}

// GitHubConfig configures the github loader.
type GitHubConfig struct {
	// Token authenticates API calls. Empty means unauthenticated
	// (60 requests/hour, public repositories only).
	Token string

	// BaseURL overrides the API endpoint, for GitHub Enterprise or
	// tests. Empty uses api.github.com.
	BaseURL string

	// Client is the HTTP client to build on. Nil uses the default.
	Client *http.Client
}

// GitHubLoader fetches repository files through the GitHub API. A
// source "github:owner/repo[@ref][#glob]" yields one document per
// matching blob on the given ref (default branch when omitted).
type GitHubLoader struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewGitHubLoader creates a github loader.
func NewGitHubLoader(cfg GitHubConfig) (*GitHubLoader, error) {
	httpClient := cfg.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
	}

	return &GitHubLoader{
		gh:      client,
		limiter: rate.NewLimiter(rate.Limit(githubRequestRate), 1),
	}, nil
}

// Load resolves a "github:" source into one document per repository
// file matching its glob.
func (l *GitHubLoader) Load(ctx context.Context, rest string) ([]domain.RawDocument, error) {
	owner, repo, ref, glob, err := parseGitHubSource(rest)
	if err != nil {
		return nil, err
	}

	if ref == "" {
		ref, err = l.defaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, fmt.Errorf("github %s/%s: %w", owner, repo, err)
		}
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tree, _, err := l.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("github %s/%s: get tree: %w", owner, repo, err)
	}
	logger.Debug("github %s/%s@%s: %d tree entries", owner, repo, ref, len(tree.Entries))

	var docs []domain.RawDocument
	for _, entry := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := entry.GetPath()
		if entry.GetType() != "blob" ||
			!matchesGlob(path, glob) ||
			binaryExtensions[strings.ToLower(filepath.Ext(path))] ||
			entry.GetSize() > maxBlobSize {
			continue
		}

		text, err := l.blobText(ctx, owner, repo, entry.GetSHA())
		if err != nil {
			logger.Warn("github %s/%s: %s: %v", owner, repo, path, err)
			continue
		}

		ext := pathExtension(path)
		if ext == "" {
			ext = domain.DefaultExtension
		}
		docPath := fmt.Sprintf("%s:%s/%s@%s/%s", GitHubScheme, owner, repo, ref, path)
		docs = append(docs, rawDocument(docPath, text, ext))
	}
	return docs, nil
}

// defaultBranch looks up the repository's default branch.
func (l *GitHubLoader) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	r, _, err := l.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("get repository: %w", err)
	}
	branch := r.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}
	return branch, nil
}

// blobText downloads and decodes one blob.
func (l *GitHubLoader) blobText(ctx context.Context, owner, repo, sha string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	blob, _, err := l.gh.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return "", fmt.Errorf("get blob: %w", err)
	}
	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", fmt.Errorf("decode blob: %w", err)
		}
		return string(data), nil
	}
	return blob.GetContent(), nil
}

// parseGitHubSource splits "owner/repo[@ref][#glob]".
func parseGitHubSource(rest string) (owner, repo, ref, glob string, err error) {
	rest, glob, _ = strings.Cut(rest, "#")
	rest, ref, _ = strings.Cut(rest, "@")
	owner, repo, found := strings.Cut(rest, "/")
	if !found || owner == "" || repo == "" {
		return "", "", "", "", fmt.Errorf("%w: github source must be owner/repo[@ref][#glob], got %q",
			domain.ErrInvalidInput, rest)
	}
	return owner, repo, ref, glob, nil
}

// matchesGlob checks a repository path against the source's glob,
// trying the base name first and then the full path. No glob admits
// every path.
func matchesGlob(path, glob string) bool {
	if glob == "" {
		return true
	}
	if ok, err := filepath.Match(glob, filepath.Base(path)); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(glob, path)
	return err == nil && ok
}
