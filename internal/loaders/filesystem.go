package loaders

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// FileLoader reads local files. Extensions with a configured loader
// command are converted by running the command; everything else is read
// as plain text.
type FileLoader struct {
	commands map[string]string
}

// NewFileLoader creates a file loader with the given per-extension
// loader commands.
func NewFileLoader(commands map[string]string) *FileLoader {
	return &FileLoader{commands: commands}
}

// Load reads one file into a raw document. The document keeps the
// file's extension as its format hint, except command-converted files,
// whose output is plain text.
func (l *FileLoader) Load(ctx context.Context, path string) (domain.RawDocument, error) {
	ext := pathExtension(path)
	if ext == "" {
		ext = domain.DefaultExtension
	}

	if command := l.commands[ext]; command != "" {
		text, err := runLoaderCommand(ctx, command, path)
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("load %s: %w", path, err)
		}
		return rawDocument(path, text, domain.DefaultExtension), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("load %s: %w", path, err)
	}
	return rawDocument(path, string(data), ext), nil
}

// rawDocument assembles a raw document with the standard routing
// metadata every loader attaches.
func rawDocument(path, text, extension string) domain.RawDocument {
	var meta domain.Metadata
	meta = meta.Set(domain.PathMetadata, path)
	meta = meta.Set(domain.ExtensionMetadata, extension)
	return domain.RawDocument{Path: path, Text: text, Metadata: meta}
}
