package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// userAgent is sent with every fetch; some documentation hosts refuse
// requests without one.
const userAgent = "ragdex/1.0"

// contentTypeExtensions maps MIME types to the extension hint used for
// splitting and loader command dispatch.
var contentTypeExtensions = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/vnd.oasis.opendocument.text":                                   "odt",
	"application/vnd.oasis.opendocument.spreadsheet":                            "ods",
	"application/vnd.oasis.opendocument.presentation":                           "odp",
	"application/rtf": "rtf",
	"text/javascript": "js",
	"text/html":       "html",
}

// URLLoader fetches single web pages. A configured "url" loader command
// replaces the built-in fetch entirely; per-extension commands convert
// downloaded binary formats.
type URLLoader struct {
	client   *http.Client
	commands map[string]string
}

// NewURLLoader creates a URL loader using the given HTTP client and
// loader commands.
func NewURLLoader(client *http.Client, commands map[string]string) *URLLoader {
	return &URLLoader{client: client, commands: commands}
}

// Load fetches one URL into a raw document. HTML responses are reduced
// to readable text; the extension hint follows the response content
// type, falling back to the URL path's extension.
func (l *URLLoader) Load(ctx context.Context, pageURL string) (domain.RawDocument, error) {
	if command := l.commands[URLLoaderKey]; command != "" {
		text, err := runLoaderCommand(ctx, command, pageURL)
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("load %s: %w", pageURL, err)
		}
		return rawDocument(pageURL, text, domain.DefaultExtension), nil
	}

	body, contentType, err := l.fetch(ctx, pageURL)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("load %s: %w", pageURL, err)
	}

	ext := extensionForContentType(contentType, pageURL)
	if isMediaType(contentType) {
		return domain.RawDocument{}, fmt.Errorf("load %s: unexpected media type %s", pageURL, contentType)
	}

	// Binary formats need a configured converter; its input is a file.
	if command := l.commands[ext]; command != "" {
		text, err := convertWithCommand(ctx, command, body, ext)
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("load %s: %w", pageURL, err)
		}
		return rawDocument(pageURL, text, domain.DefaultExtension), nil
	}

	if ext == "html" {
		return rawDocument(pageURL, stripHTML(body), "md"), nil
	}
	return rawDocument(pageURL, body, ext), nil
}

// fetch issues the GET and returns the body with the response's bare
// MIME type (parameters stripped).
func (l *URLLoader) fetch(ctx context.Context, pageURL string) (body, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("invalid status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	contentType = resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return string(data), strings.TrimSpace(contentType), nil
}

// extensionForContentType resolves the format hint for a response. An
// absent content type falls back to the URL path's extension, then to
// plain text.
func extensionForContentType(contentType, pageURL string) string {
	if contentType == "" {
		if ext := pathExtension(pageURL); ext != "" {
			return ext
		}
		return domain.DefaultExtension
	}
	if ext, ok := contentTypeExtensions[contentType]; ok {
		return ext
	}
	if _, subtype, found := strings.Cut(contentType, "/"); found {
		return strings.ToLower(subtype)
	}
	return domain.DefaultExtension
}

// isMediaType reports whether the content type is image, video or audio
// content, which has no textual representation.
func isMediaType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") ||
		strings.HasPrefix(contentType, "video/") ||
		strings.HasPrefix(contentType, "audio/")
}

// convertWithCommand writes the downloaded body to a temp file and runs
// the extension's loader command over it.
func convertWithCommand(ctx context.Context, command, body, ext string) (string, error) {
	tmp, err := os.CreateTemp("", "ragdex-download-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return runLoaderCommand(ctx, command, tmp.Name())
}
