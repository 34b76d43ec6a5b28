// Package sqlite provides SQLite-backed implementations of the auxiliary
// driven ports that do not belong in the corpus document.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements two store
// interfaces through a single database connection:
//
//   - FetchCache: crawled page content keyed by URL, with freshness bounds
//   - HistoryStore: past search queries and result counts
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory, applied in order on open.
//
// # Data Location
//
// By default, the database is stored at ~/.ragdex/data/cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
