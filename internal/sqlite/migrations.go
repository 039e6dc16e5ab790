package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/repository"
)

// migration moves the schema from Version-1 to Version.
type migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

// migrations has one step for every version transition, applied in order.
var migrations = []migration{
	{Version: 1, Name: "initial collections", Up: migrateInitial},
	{Version: 2, Name: "list species classes and entries-by-species index", Up: migrateListClasses},
	{Version: 3, Name: "preferences", Up: migratePreferences},
}

// CurrentSchemaVersion is the version a fully migrated store reports.
var CurrentSchemaVersion = migrations[len(migrations)-1].Version

// collection describes the current shape of one store collection.
type collection struct {
	Table      string
	PrimaryKey string
	UserData   bool
	DDL        []string
}

var collections = []collection{
	{
		Table:      "species",
		PrimaryKey: "species_id",
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS species (
				species_id TEXT PRIMARY KEY,
				species_class TEXT NOT NULL,
				danish_name TEXT NOT NULL DEFAULT '',
				english_name TEXT NOT NULL DEFAULT '',
				latin_name TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT '',
				sort_code INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_species_class ON species(species_class)`,
			`CREATE INDEX IF NOT EXISTS idx_species_sort_code ON species(sort_code)`,
		},
	},
	{
		Table:      "dimensions",
		PrimaryKey: "dimension_id",
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS dimensions (
				dimension_id TEXT PRIMARY KEY,
				year INTEGER NOT NULL,
				month INTEGER,
				week_number INTEGER,
				location_id TEXT,
				municipality TEXT,
				region TEXT
			)`,
		},
	},
	{
		Table:      "lists",
		PrimaryKey: "list_id",
		UserData:   true,
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS lists (
				list_id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				dimension_id TEXT NOT NULL,
				species_classes TEXT NOT NULL DEFAULT '[]'
			)`,
		},
	},
	{
		Table:      "entries",
		PrimaryKey: "entry_id",
		UserData:   true,
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS entries (
				entry_id TEXT PRIMARY KEY,
				list_id TEXT NOT NULL,
				species_id TEXT NOT NULL,
				seen INTEGER NOT NULL DEFAULT 0,
				seen_at TEXT,
				reference_link TEXT,
				comment TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_entries_list ON entries(list_id)`,
			`CREATE INDEX IF NOT EXISTS idx_entries_species ON entries(species_id)`,
		},
	},
	{
		Table:      "preferences",
		PrimaryKey: "key",
		UserData:   true,
		DDL: []string{
			`CREATE TABLE IF NOT EXISTS preferences (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies pending migrations and reconciles collection shapes.
//
// A collection whose primary key column differs from the expected one cannot
// be migrated in place. Reference collections are dropped and recreated
// (bootstrap reloads them). User collections are only dropped when
// opts.AllowUserDataReset is set.
func (db *DB) Migrate(ctx context.Context, opts Options) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := db.resetDriftedCollections(ctx, tx, opts); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= version {
			continue
		}
		if err := m.Up(ctx, tx); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		db.logger.Info("applied schema migration", "version", m.Version, "name", m.Name)
		version = m.Version
	}

	if err := ensureCollections(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}

func (db *DB) resetDriftedCollections(ctx context.Context, tx *sql.Tx, opts Options) error {
	for _, c := range collections {
		exists, err := tableExists(ctx, tx, c.Table)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		pk, err := primaryKeyColumn(ctx, tx, c.Table)
		if err != nil {
			return err
		}
		if pk == c.PrimaryKey {
			continue
		}

		if c.UserData && !opts.AllowUserDataReset {
			return fmt.Errorf("%w: %s has key %q, want %q", repository.ErrSchemaDrift, c.Table, pk, c.PrimaryKey)
		}

		level := "reference"
		if c.UserData {
			level = "user"
		}
		db.logger.Warn("dropping collection with mismatched key",
			"collection", c.Table, "kind", level, "found_key", pk, "expected_key", c.PrimaryKey)
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+c.Table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", c.Table, err)
		}
	}
	return nil
}

func ensureCollections(ctx context.Context, tx *sql.Tx) error {
	for _, c := range collections {
		for _, stmt := range c.DDL {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create %s: %w", c.Table, err)
			}
		}
	}
	return nil
}

func migrateInitial(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS species (
			species_id TEXT PRIMARY KEY,
			species_class TEXT NOT NULL,
			danish_name TEXT NOT NULL DEFAULT '',
			english_name TEXT NOT NULL DEFAULT '',
			latin_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			sort_code INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_species_class ON species(species_class)`,
		`CREATE INDEX IF NOT EXISTS idx_species_sort_code ON species(sort_code)`,
		`CREATE TABLE IF NOT EXISTS dimensions (
			dimension_id TEXT PRIMARY KEY,
			year INTEGER NOT NULL,
			month INTEGER,
			week_number INTEGER,
			location_id TEXT,
			municipality TEXT,
			region TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS lists (
			list_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			dimension_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			entry_id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL,
			species_id TEXT NOT NULL,
			seen INTEGER NOT NULL DEFAULT 0,
			seen_at TEXT,
			reference_link TEXT,
			comment TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_list ON entries(list_id)`,
	}
	return execAll(ctx, tx, stmts)
}

func migrateListClasses(ctx context.Context, tx *sql.Tx) error {
	listsExist, err := tableExists(ctx, tx, "lists")
	if err != nil {
		return err
	}
	if listsExist {
		has, err := hasColumn(ctx, tx, "lists", "species_classes")
		if err != nil {
			return err
		}
		if !has {
			if _, err := tx.ExecContext(ctx, `ALTER TABLE lists ADD COLUMN species_classes TEXT NOT NULL DEFAULT '[]'`); err != nil {
				return err
			}
		}
	}

	entriesExist, err := tableExists(ctx, tx, "entries")
	if err != nil {
		return err
	}
	if entriesExist {
		if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_entries_species ON entries(species_id)`); err != nil {
			return err
		}
	}
	return nil
}

func migratePreferences(ctx context.Context, tx *sql.Tx) error {
	return execAll(ctx, tx, []string{
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	})
}

func execAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func tableExists(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

func primaryKeyColumn(ctx context.Context, tx *sql.Tx, table string) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx,
		"SELECT name FROM pragma_table_info(?) WHERE pk = 1", table).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key of %s: %w", table, err)
	}
	return name, nil
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	return count > 0, nil
}
