package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects diagnostics into a buffer for the test's lifetime.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

// TestSetVerbose tests that toggling is visible through IsVerbose
func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

// TestLevels tests the prefix each level prints when verbose is on
func TestLevels(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("indexed %d chunks", 3) }, "[DEBUG] indexed 3 chunks\n"},
		{"info", func() { Info("crawling %s", "https://example.com/docs/") }, "[INFO] crawling https://example.com/docs/\n"},
		{"warn", func() { Warn("skipping unreadable file") }, "[WARN] skipping unreadable file\n"},
		{"section", func() { Section("Sync Documents") }, "\n=== Sync Documents ===\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// TestQuietByDefault tests that nothing is written while verbose is off
func TestQuietByDefault(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Zero(t, buf.Len())
}

// TestConcurrentUse tests logging from several goroutines at once
func TestConcurrentUse(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Debug("worker %d step %d", i, j)
			}
		}()
	}
	wg.Wait()

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 400, lines)
}
