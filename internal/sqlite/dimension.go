package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/repository"
)

// DimensionRepository implements dimension.Repository for SQLite
type DimensionRepository struct {
	db *DB
}

// NewDimensionRepository creates a new DimensionRepository
func NewDimensionRepository(db *DB) *DimensionRepository {
	return &DimensionRepository{db: db}
}

const dimensionColumns = `dimension_id, year, month, week_number, location_id, municipality, region`

// GetAll returns every dimension ordered by ID
func (r *DimensionRepository) GetAll(ctx context.Context) ([]dimension.Dimension, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+dimensionColumns+` FROM dimensions ORDER BY dimension_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dimensions: %w", err)
	}
	defer rows.Close()

	var dims []dimension.Dimension
	for rows.Next() {
		dim, err := scanDimension(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dimension: %w", err)
		}
		dims = append(dims, *dim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dimension rows: %w", err)
	}
	return dims, nil
}

// Get retrieves a dimension by ID
func (r *DimensionRepository) Get(ctx context.Context, id string) (*dimension.Dimension, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+dimensionColumns+` FROM dimensions WHERE dimension_id = ?`, id)
	dim, err := scanDimension(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dimension: %w", err)
	}
	return dim, nil
}

// Put inserts or replaces one dimension
func (r *DimensionRepository) Put(ctx context.Context, dim *dimension.Dimension) error {
	if err := putDimension(ctx, r.db, dim); err != nil {
		return fmt.Errorf("failed to put dimension: %w", err)
	}
	return nil
}

// PutMany inserts or replaces dimensions in one transaction
func (r *DimensionRepository) PutMany(ctx context.Context, dims []dimension.Dimension) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for i := range dims {
			if err := putDimension(ctx, tx, &dims[i]); err != nil {
				return fmt.Errorf("failed to put dimension %s: %w", dims[i].ID, err)
			}
		}
		return nil
	})
}

// Delete removes a dimension
func (r *DimensionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dimensions WHERE dimension_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dimension: %w", err)
	}
	return requireAffected(result, "dimension delete")
}

// Count returns the number of stored dimensions
func (r *DimensionRepository) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM dimensions`)
	if err != nil {
		return 0, fmt.Errorf("failed to count dimensions: %w", err)
	}
	return n, nil
}

// ReplaceAll atomically clears the collection and inserts dims
func (r *DimensionRepository) ReplaceAll(ctx context.Context, dims []dimension.Dimension) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dimensions`); err != nil {
			return fmt.Errorf("failed to clear dimensions: %w", err)
		}
		for i := range dims {
			if err := putDimension(ctx, tx, &dims[i]); err != nil {
				return fmt.Errorf("failed to put dimension %s: %w", dims[i].ID, err)
			}
		}
		return nil
	})
}

func scanDimension(row rowScanner) (*dimension.Dimension, error) {
	var (
		dim          dimension.Dimension
		month        sql.NullInt64
		week         sql.NullInt64
		location     sql.NullString
		municipality sql.NullString
		region       sql.NullString
	)
	err := row.Scan(&dim.ID, &dim.Year, &month, &week, &location, &municipality, &region)
	if err != nil {
		return nil, err
	}
	dim.Month = intPtr(month)
	dim.WeekNumber = intPtr(week)
	dim.LocationID = stringPtr(location)
	dim.Municipality = stringPtr(municipality)
	dim.Region = stringPtr(region)
	return &dim, nil
}

func putDimension(ctx context.Context, q queryer, dim *dimension.Dimension) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO dimensions (`+dimensionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		dim.ID,
		dim.Year,
		dim.Month,
		dim.WeekNumber,
		dim.LocationID,
		dim.Municipality,
		dim.Region,
	)
	return err
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
