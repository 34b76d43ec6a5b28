package mcp

import (
	"github.com/custodia-labs/ragdex/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Rag drives search, sync and corpus inspection.
	Rag driving.RagService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Rag == nil {
		return ErrMissingRagService
	}
	return nil
}
