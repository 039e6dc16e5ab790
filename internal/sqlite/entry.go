package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/repository"
)

// EntryRepository implements checklist.EntryRepository for SQLite
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `entry_id, list_id, species_id, seen, seen_at, reference_link, comment`

// GetAll returns every entry ordered by ID
func (r *EntryRepository) GetAll(ctx context.Context) ([]checklist.Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries ORDER BY entry_id`)
}

// Get retrieves an entry by ID
func (r *EntryRepository) Get(ctx context.Context, id string) (*checklist.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE entry_id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// Put inserts or replaces one entry
func (r *EntryRepository) Put(ctx context.Context, entry *checklist.Entry) error {
	if err := putEntry(ctx, r.db, entry); err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// PutMany inserts or replaces entries in one transaction
func (r *EntryRepository) PutMany(ctx context.Context, entries []checklist.Entry) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range entries {
			if err := putEntry(ctx, tx, &entries[i]); err != nil {
				return fmt.Errorf("failed to put entry %s: %w", entries[i].ID, err)
			}
		}
		return nil
	})
}

// Delete removes an entry
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE entry_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireAffected(result, "entry delete")
}

// Count returns the number of stored entries
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// CountByList returns the number of entries on a list
func (r *EntryRepository) CountByList(ctx context.Context, listID string) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM entries WHERE list_id = ?`, listID)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries by list: %w", err)
	}
	return n, nil
}

// CountSeenByList returns the number of seen entries on a list
func (r *EntryRepository) CountSeenByList(ctx context.Context, listID string) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM entries WHERE list_id = ? AND seen = 1`, listID)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen entries: %w", err)
	}
	return n, nil
}

// GetByList returns the entries of a list using the list index
func (r *EntryRepository) GetByList(ctx context.Context, listID string) ([]checklist.Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries WHERE list_id = ? ORDER BY entry_id`, listID)
}

// GetBySpecies returns every entry tracking a species using the species index
func (r *EntryRepository) GetBySpecies(ctx context.Context, speciesID string) ([]checklist.Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM entries WHERE species_id = ? ORDER BY entry_id`, speciesID)
}

func (r *EntryRepository) query(ctx context.Context, query string, args ...any) ([]checklist.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []checklist.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

func scanEntry(row rowScanner) (*checklist.Entry, error) {
	var (
		entry   checklist.Entry
		seenAt  sql.NullString
		link    sql.NullString
		comment sql.NullString
	)
	err := row.Scan(&entry.ID, &entry.ListID, &entry.SpeciesID, &entry.Seen, &seenAt, &link, &comment)
	if err != nil {
		return nil, err
	}
	entry.SeenAt = stringPtr(seenAt)
	entry.ReferenceLink = stringPtr(link)
	entry.Comment = stringPtr(comment)
	return &entry, nil
}

func putEntry(ctx context.Context, q queryer, entry *checklist.Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.ListID,
		entry.SpeciesID,
		entry.Seen,
		entry.SeenAt,
		entry.ReferenceLink,
		entry.Comment,
	)
	return err
}
