// Package mcp provides a Model Context Protocol server adapter for ragdex.
// It lets AI assistants search and sync the local corpus over stdio or HTTP.
package mcp

import "errors"

// ErrMissingRagService is returned when the rag service is not provided.
var ErrMissingRagService = errors.New("mcp: rag service is required")
