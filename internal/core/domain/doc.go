// Package domain defines the core business entities for ragdex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FileID / DocumentID: stable identifiers for ingested sources and chunks
//   - File: one ingested source with its content hash and chunks
//   - Chunk: a bounded slice of a source document, the unit of retrieval
//   - Corpus: the persisted aggregate of paths, files and embedding vectors
//   - Settings: the per-corpus indexing and retrieval configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
