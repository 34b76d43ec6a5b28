package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragdex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragdex/internal/core/domain"
	"github.com/custodia-labs/ragdex/internal/core/ports/driven"
)

// DefaultFetchTTL bounds how long a cached page is served before it is
// fetched again.
const DefaultFetchTTL = time.Hour

// Store is a unified SQLite-based storage that provides access to the
// fetch cache and search history through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragdex/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragdex", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FetchCache returns a FetchCache interface backed by this store.
// Entries older than maxAge are treated as misses; a maxAge of zero
// keeps entries fresh forever.
func (s *Store) FetchCache(maxAge time.Duration) driven.FetchCache {
	return &fetchCache{store: s, maxAge: maxAge}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "0001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Fetch Cache ====================

// fetchCache implements driven.FetchCache.
type fetchCache struct {
	store  *Store
	maxAge time.Duration
}

var _ driven.FetchCache = (*fetchCache)(nil)

// Get returns the cached content for a URL when present and fresh.
func (c *fetchCache) Get(ctx context.Context, url string) (string, bool, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT content, fetched_at FROM fetch_cache WHERE url = ?
	`, url)

	var content string
	var fetchedAt sql.NullTime
	if err := row.Scan(&content, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("scanning cache entry: %w", err)
	}

	if c.maxAge > 0 && fetchedAt.Valid && time.Since(fetchedAt.Time) > c.maxAge {
		return "", false, nil
	}

	return content, true, nil
}

// Put stores content for a URL, replacing any previous entry.
func (c *fetchCache) Put(ctx context.Context, url, content string) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO fetch_cache (url, content, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			content = excluded.content,
			fetched_at = excluded.fetched_at
	`, url, content, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("caching fetch for %s: %w", url, err)
	}
	return nil
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append records a search.
func (h *historyStore) Append(ctx context.Context, query string, results int) error {
	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO search_history (query, results, created_at)
		VALUES (?, ?, ?)
	`, query, results, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first. A non-positive
// limit returns the full history.
func (h *historyStore) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, query, results, created_at
		FROM search_history
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.HistoryEntry
		var createdAt sql.NullTime
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.Results, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return entries, nil
}
