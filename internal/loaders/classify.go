package loaders

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// RecursiveURLLoader is the loader command key for overriding the
// built-in crawler.
const RecursiveURLLoader = "recursive_url"

// URLLoaderKey is the loader command key for overriding plain URL
// fetching.
const URLLoaderKey = "url"

// schemeRe matches a scheme-qualified source ("scheme:rest"). Schemes
// are at least two characters so Windows drive paths stay local paths.
var schemeRe = regexp.MustCompile(`^([a-z][a-z0-9+.-]+):(.+)$`)

// IsURL reports whether the source is fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// SplitScheme splits a scheme-qualified source into its scheme and
// remainder. URLs are not scheme-qualified sources.
func SplitScheme(source string) (scheme, rest string, ok bool) {
	if IsURL(source) {
		return "", "", false
	}
	m := schemeRe.FindStringSubmatch(source)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// parseGlob splits a source path into its base path and the extension
// set it selects. Supported forms: "dir/**" (every file below dir) and
// "dir/**/*.{md,txt}" or "dir/**/*.md" (extension-filtered). Paths
// without a glob return themselves with no extension filter.
func parseGlob(path string) (base string, exts []string, err error) {
	start := strings.Index(path, "/**/*.")
	if start < 0 {
		start = strings.Index(path, `\**\*.`)
	}
	if start >= 0 {
		base = path[:start]
		tail := path[start+6:]
		if end := strings.Index(tail, "}"); end >= 0 {
			set := tail[:end+1]
			if !strings.HasPrefix(set, "{") || !strings.HasSuffix(set, "}") {
				return "", nil, fmt.Errorf("invalid glob %q", path)
			}
			return base, strings.Split(set[1:len(set)-1], ","), nil
		}
		return base, []string{tail}, nil
	}
	if rest, found := strings.CutSuffix(path, "/**"); found {
		return rest, nil, nil
	}
	if rest, found := strings.CutSuffix(path, `\**`); found {
		return rest, nil, nil
	}
	return path, nil, nil
}

// expandLocal resolves a local source to the absolute paths of every
// file it selects. Directories are walked recursively; glob extension
// sets filter the walk. Matches come back in lexical walk order.
func expandLocal(source string) ([]string, error) {
	base, exts, err := parseGlob(source)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", base, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("not found: %s", abs)
	}
	if !info.IsDir() {
		if matchesExtensions(abs, exts) {
			return []string{abs}, nil
		}
		return nil, nil
	}

	var files []string
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matchesExtensions(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", abs, walkErr)
	}
	return files, nil
}

// matchesExtensions reports whether the path's extension is in the
// filter set. An empty set admits everything; files without an
// extension only pass an empty set.
func matchesExtensions(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// pathExtension returns the lower-cased extension of a path without its
// dot, or empty when the path has none.
func pathExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// LocalRoots returns the absolute base directory or file behind every
// local source, deduplicated. Watch mode observes these; URL and
// protocol sources have no local footprint.
func LocalRoots(sources []string, commands map[string]string) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, source := range sources {
		if IsURL(source) {
			continue
		}
		if scheme, _, ok := SplitScheme(source); ok {
			if scheme == GitHubScheme || commands[scheme] != "" {
				continue
			}
		}
		base, _, err := parseGlob(source)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			roots = append(roots, abs)
		}
	}
	return roots
}
