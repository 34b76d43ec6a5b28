package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetadata_SetAndGet tests insertion and lookup
func TestMetadata_SetAndGet(t *testing.T) {
	var m Metadata
	m = m.Set("title", "Release Notes")
	m = m.Set("author", "ops")

	v, ok := m.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Release Notes", v)

	v, ok = m.Get("author")
	require.True(t, ok)
	assert.Equal(t, "ops", v)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

// TestMetadata_SetReplaces tests that setting an existing key keeps its position
func TestMetadata_SetReplaces(t *testing.T) {
	var m Metadata
	m = m.Set("a", "1")
	m = m.Set("b", "2")
	m = m.Set("a", "3")

	require.Len(t, m, 2)
	assert.Equal(t, MetaEntry{Key: "a", Value: "3"}, m[0])
	assert.Equal(t, MetaEntry{Key: "b", Value: "2"}, m[1])
}

// TestMetadata_PreservesInsertionOrder tests iteration order stability
func TestMetadata_PreservesInsertionOrder(t *testing.T) {
	var m Metadata
	for _, k := range []string{"zeta", "alpha", "mid"} {
		m = m.Set(k, k)
	}

	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

// TestMetadata_Delete tests removal and the returned value
func TestMetadata_Delete(t *testing.T) {
	var m Metadata
	m = m.Set("keep", "1")
	m = m.Set("drop", "2")

	v, ok := m.Delete("drop")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	require.Len(t, m, 1)
	assert.Equal(t, "keep", m[0].Key)

	_, ok = m.Delete("drop")
	assert.False(t, ok)
}

// TestMetadata_Clone tests that clones do not share backing storage
func TestMetadata_Clone(t *testing.T) {
	var m Metadata
	m = m.Set("k", "original")

	clone := m.Clone()
	clone = clone.Set("k", "changed")

	v, _ := m.Get("k")
	assert.Equal(t, "original", v)
	v, _ = clone.Get("k")
	assert.Equal(t, "changed", v)
}

// TestMetadata_CloneNil tests cloning the zero value
func TestMetadata_CloneNil(t *testing.T) {
	var m Metadata

	assert.Nil(t, m.Clone())
}
