package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/repository"
)

// SpeciesRepository implements species.Repository for SQLite
type SpeciesRepository struct {
	db *DB
}

// NewSpeciesRepository creates a new SpeciesRepository
func NewSpeciesRepository(db *DB) *SpeciesRepository {
	return &SpeciesRepository{db: db}
}

const speciesColumns = `species_id, species_class, danish_name, english_name, latin_name, status, sort_code`

const upsertSpeciesQuery = `
	INSERT INTO species (species_id, species_class, danish_name, english_name, latin_name, status, sort_code)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(species_id) DO UPDATE SET
		species_class = excluded.species_class,
		danish_name = excluded.danish_name,
		english_name = excluded.english_name,
		latin_name = excluded.latin_name,
		status = excluded.status,
		sort_code = excluded.sort_code
`

// GetAll returns every species ordered by ID
func (r *SpeciesRepository) GetAll(ctx context.Context) ([]species.Species, error) {
	return r.query(ctx, `SELECT `+speciesColumns+` FROM species ORDER BY species_id`)
}

// Get retrieves a species by ID
func (r *SpeciesRepository) Get(ctx context.Context, id string) (*species.Species, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+speciesColumns+` FROM species WHERE species_id = ?`, id)
	sp, err := scanSpecies(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get species: %w", err)
	}
	return sp, nil
}

// GetByClass returns the species of one class using the class index
func (r *SpeciesRepository) GetByClass(ctx context.Context, class species.Class) ([]species.Species, error) {
	return r.query(ctx, `SELECT `+speciesColumns+` FROM species WHERE species_class = ? ORDER BY species_id`, string(class))
}

// Put inserts or replaces one species
func (r *SpeciesRepository) Put(ctx context.Context, sp *species.Species) error {
	if err := putSpecies(ctx, r.db, sp); err != nil {
		return fmt.Errorf("failed to put species: %w", err)
	}
	return nil
}

// PutMany inserts or replaces species in one transaction
func (r *SpeciesRepository) PutMany(ctx context.Context, list []species.Species) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range list {
			if err := putSpecies(ctx, tx, &list[i]); err != nil {
				return fmt.Errorf("failed to put species %s: %w", list[i].ID, err)
			}
		}
		return nil
	})
}

// Delete removes a species
func (r *SpeciesRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM species WHERE species_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete species: %w", err)
	}
	return requireAffected(result, "species delete")
}

// Count returns the number of stored species
func (r *SpeciesRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM species`)
	if err != nil {
		return 0, fmt.Errorf("failed to count species: %w", err)
	}
	return n, nil
}

// CountByClass returns the number of stored species of one class
func (r *SpeciesRepository) CountByClass(ctx context.Context, class species.Class) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM species WHERE species_class = ?`, string(class))
	if err != nil {
		return 0, fmt.Errorf("failed to count species by class: %w", err)
	}
	return n, nil
}

// ReplaceClass atomically deletes every species of class and inserts list
func (r *SpeciesRepository) ReplaceClass(ctx context.Context, class species.Class, list []species.Species) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM species WHERE species_class = ?`, string(class)); err != nil {
			return fmt.Errorf("failed to clear %s species: %w", class, err)
		}
		for i := range list {
			if err := putSpecies(ctx, tx, &list[i]); err != nil {
				return fmt.Errorf("failed to put species %s: %w", list[i].ID, err)
			}
		}
		return nil
	})
}

func (r *SpeciesRepository) query(ctx context.Context, query string, args ...any) ([]species.Species, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query species: %w", err)
	}
	defer rows.Close()

	var list []species.Species
	for rows.Next() {
		sp, err := scanSpecies(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan species: %w", err)
		}
		list = append(list, *sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating species rows: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpecies(row rowScanner) (*species.Species, error) {
	var sp species.Species
	var class string
	err := row.Scan(
		&sp.ID,
		&class,
		&sp.DanishName,
		&sp.EnglishName,
		&sp.LatinName,
		&sp.Status,
		&sp.SortCode,
	)
	if err != nil {
		return nil, err
	}
	sp.Class = species.Class(class)
	return &sp, nil
}

func putSpecies(ctx context.Context, q queryer, sp *species.Species) error {
	_, err := q.ExecContext(ctx, upsertSpeciesQuery,
		sp.ID,
		string(sp.Class),
		sp.DanishName,
		sp.EnglishName,
		sp.LatinName,
		sp.Status,
		sp.SortCode,
	)
	return err
}
