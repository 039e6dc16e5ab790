package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/repository"
)

// ListRepository implements checklist.ListRepository for SQLite
type ListRepository struct {
	db *DB
}

// NewListRepository creates a new ListRepository
func NewListRepository(db *DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `list_id, name, created_at, dimension_id, species_classes`

// GetAll returns every list ordered by ID
func (r *ListRepository) GetAll(ctx context.Context) ([]checklist.List, error) {
	return queryLists(ctx, r.db)
}

// Get retrieves a list by ID
func (r *ListRepository) Get(ctx context.Context, id string) (*checklist.List, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE list_id = ?`, id)
	list, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// Put inserts or replaces one list
func (r *ListRepository) Put(ctx context.Context, list *checklist.List) error {
	if err := putList(ctx, r.db, list); err != nil {
		return fmt.Errorf("failed to put list: %w", err)
	}
	return nil
}

// PutMany inserts or replaces lists in one transaction
func (r *ListRepository) PutMany(ctx context.Context, lists []checklist.List) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range lists {
			if err := putList(ctx, tx, &lists[i]); err != nil {
				return fmt.Errorf("failed to put list %s: %w", lists[i].ID, err)
			}
		}
		return nil
	})
}

// Delete removes a list without touching its entries
func (r *ListRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lists WHERE list_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return requireAffected(result, "list delete")
}

// Count returns the number of stored lists
func (r *ListRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM lists`)
	if err != nil {
		return 0, fmt.Errorf("failed to count lists: %w", err)
	}
	return n, nil
}

// CreateWithEntries inserts a new list and its entries in one transaction
func (r *ListRepository) CreateWithEntries(ctx context.Context, list *checklist.List, entries []checklist.Entry) error {
	classes, err := encodeClasses(list.SpeciesClasses)
	if err != nil {
		return err
	}
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lists (`+listColumns+`)
			VALUES (?, ?, ?, ?, ?)
		`, list.ID, list.Name, list.CreatedAt, list.DimensionID, classes)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: list %s already exists", repository.ErrInvalidInput, list.ID)
			}
			return fmt.Errorf("failed to create list: %w", err)
		}
		for i := range entries {
			entry := entries[i]
			entry.ListID = list.ID
			if err := putEntry(ctx, tx, &entry); err != nil {
				return fmt.Errorf("failed to create entry %s: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// DeleteCascade removes a list and every entry belonging to it in one transaction
func (r *ListRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		return nil
	})
}

// ReplaceAllListsAndEntries clears both user collections and inserts the
// snapshot in one transaction
func (r *ListRepository) ReplaceAllListsAndEntries(ctx context.Context, snap checklist.Snapshot) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lists`); err != nil {
			return fmt.Errorf("failed to clear lists: %w", err)
		}
		for i := range snap.Lists {
			if err := putList(ctx, tx, &snap.Lists[i]); err != nil {
				return fmt.Errorf("failed to put list %s: %w", snap.Lists[i].ID, err)
			}
		}
		for i := range snap.Entries {
			if err := putEntry(ctx, tx, &snap.Entries[i]); err != nil {
				return fmt.Errorf("failed to put entry %s: %w", snap.Entries[i].ID, err)
			}
		}
		return nil
	})
}

func queryLists(ctx context.Context, q queryer) ([]checklist.List, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+listColumns+` FROM lists ORDER BY list_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	var lists []checklist.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list rows: %w", err)
	}
	return lists, nil
}

func scanList(row rowScanner) (*checklist.List, error) {
	var list checklist.List
	var classes string
	if err := row.Scan(&list.ID, &list.Name, &list.CreatedAt, &list.DimensionID, &classes); err != nil {
		return nil, err
	}
	decoded, err := decodeClasses(classes)
	if err != nil {
		return nil, err
	}
	list.SpeciesClasses = decoded
	return &list, nil
}

func putList(ctx context.Context, q queryer, list *checklist.List) error {
	classes, err := encodeClasses(list.SpeciesClasses)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO lists (`+listColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, list.ID, list.Name, list.CreatedAt, list.DimensionID, classes)
	return err
}

func encodeClasses(classes []species.Class) (string, error) {
	if len(classes) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(classes)
	if err != nil {
		return "", fmt.Errorf("failed to encode species classes: %w", err)
	}
	return string(data), nil
}

func decodeClasses(raw string) ([]species.Class, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var classes []species.Class
	if err := json.Unmarshal([]byte(raw), &classes); err != nil {
		return nil, fmt.Errorf("failed to decode species classes: %w", err)
	}
	return classes, nil
}
