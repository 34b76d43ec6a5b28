// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// SearchCompleted carries search output back to the model.
type SearchCompleted struct {
	Output *domain.SearchOutput
	Err    error
}

// HistoryLoaded carries recent searches used to pre-fill the query input.
type HistoryLoaded struct {
	Entries []domain.HistoryEntry
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
