package tui

import "errors"

// ErrMissingRagService is returned when the rag service is not provided.
var ErrMissingRagService = errors.New("tui: rag service is required")
