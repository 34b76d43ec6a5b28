package messages

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragdex/internal/core/domain"
)

func TestSearchCompleted_WithOutput(t *testing.T) {
	output := &domain.SearchOutput{
		Results: []domain.SearchResult{
			{Path: "docs/guide.md", Score: 0.9},
		},
	}

	msg := SearchCompleted{Output: output}

	assert.Len(t, msg.Output.Results, 1)
	assert.NoError(t, msg.Err)
}

func TestSearchCompleted_WithError(t *testing.T) {
	err := errors.New("search failed")

	msg := SearchCompleted{Err: err}

	assert.Nil(t, msg.Output)
	assert.Equal(t, err, msg.Err)
}

func TestHistoryLoaded(t *testing.T) {
	entries := []domain.HistoryEntry{
		{Query: "kayak routes", Results: 3, CreatedAt: time.Now()},
	}

	msg := HistoryLoaded{Entries: entries}

	assert.Len(t, msg.Entries, 1)
	assert.Equal(t, "kayak routes", msg.Entries[0].Query)
	assert.NoError(t, msg.Err)
}

func TestErrorOccurred(t *testing.T) {
	err := errors.New("something went wrong")

	msg := ErrorOccurred{Err: err}

	assert.Equal(t, err, msg.Err)
}

func TestQuit(t *testing.T) {
	msg := Quit{}

	assert.NotNil(t, msg)
}
