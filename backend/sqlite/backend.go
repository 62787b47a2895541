package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/mwantia/vfile/backend"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend stores whole files in a SQLite database:
//
// Layer 1: In-memory B-tree for fast path → ID lookups (keys map)
// Layer 2: SQLite table (vfile_objects) holding content, mode and timestamps
//
// Paths are unique; every object receives a UUIDv7 identifier on creation.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	// In-memory B-tree for fast key lookups
	keys *btree.Map[string, string]
}

// NewSQLiteBackend creates a new SQLite-backed filesystem.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Every pooled connection to ":memory:" would get its own database
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	backend := &SQLiteBackend{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}

// initSchema creates the database schema.
func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vfile_objects (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		mode INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0 CHECK(size >= 0),
		modify_time INTEGER NOT NULL,
		create_time INTEGER NOT NULL,
		content BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vfile_objects_path ON vfile_objects(path);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this backend
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open verifies the connection and loads all paths into the B-tree.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if err := sb.db.PingContext(ctx); err != nil {
		return err
	}

	rows, err := sb.db.QueryContext(ctx, "SELECT path, id FROM vfile_objects")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var path, id string
		if err := rows.Scan(&path, &id); err != nil {
			return err
		}
		sb.keys.Set(path, id)
	}

	return rows.Err()
}

// Close is part of the lifecycle behaviour and closes the database.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.keys.Clear()
	return sb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *SQLiteBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityPermissions,
			backend.CapabilityPersistent,
			backend.CapabilityAppend,
			backend.CapabilityExclusive,
		},
	}
}
