// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DataStore: corpus persistence (YAML store)
//   - EmbeddingService: turns chunk and query text into vectors
//   - KeywordIndex: BM25 keyword search, rebuilt from the corpus
//   - VectorIndex: approximate nearest-neighbour search, rebuilt from the corpus
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Reranker: external result reranking. Without it, rank fusion is used.
//   - FetchCache: caches crawler fetches between runs.
//   - HistoryStore: records past searches for recall in the TUI and CLI.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
