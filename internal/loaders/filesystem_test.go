package loaders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// TestFileLoader_Load tests plain reads and extension metadata
func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.GO", "package main")

	loader := NewFileLoader(nil)
	doc, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "package main", doc.Text)
	ext, _ := doc.Metadata.Get(domain.ExtensionMetadata)
	assert.Equal(t, "go", ext, "extension is lower-cased")
}

// TestFileLoader_NoExtension tests the plain-text fallback hint
func TestFileLoader_NoExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "LICENSE", "MIT")

	loader := NewFileLoader(nil)
	doc, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	ext, _ := doc.Metadata.Get(domain.ExtensionMetadata)
	assert.Equal(t, domain.DefaultExtension, ext)
}

// TestFileLoader_Missing tests the error for an unreadable path
func TestFileLoader_Missing(t *testing.T) {
	loader := NewFileLoader(nil)
	_, err := loader.Load(context.Background(), "/no/such/file.md")
	require.Error(t, err)
}
