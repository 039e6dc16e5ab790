package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DefaultPath is the store file name used when no path is configured.
const DefaultPath = "bigyear.db"

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Options controls how the store is opened.
type Options struct {
	// AllowUserDataReset lets Open drop and recreate the lists/entries
	// collections when their key shape has drifted. Without it, drift in a
	// user collection fails Open with repository.ErrSchemaDrift.
	AllowUserDataReset bool
	Logger             *slog.Logger
}

// New creates a new SQLite database connection without migrating it
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{DB: db, logger: slog.New(slog.DiscardHandler)}, nil
}

// Open opens (creating if absent) the local store at path and brings its
// schema up to the current version.
func Open(ctx context.Context, path string, opts Options) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := New(path)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		db.logger = opts.Logger
	}

	if err := db.Migrate(ctx, opts); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunMigrations migrates with default options (for testing)
func (db *DB) RunMigrations() error {
	return db.Migrate(context.Background(), Options{})
}

// SchemaVersion returns the stored schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}
