package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/species"
	"golang.org/x/text/cases"
	sqlitedriver "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case-folding function. SQLite's
// own lower() and LIKE fold ASCII letters only.
const foldFunc = "bigyear_fold"

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldValue)
}

func foldValue(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return foldText(v), nil
	case []byte:
		return foldText(string(v)), nil
	default:
		return v, nil
	}
}

func foldText(s string) string {
	return cases.Fold().String(s)
}

// Search returns species whose Danish, English or Latin name contains query,
// in taxonomic order. Matching is Unicode case-insensitive and treats the
// query literally.
func (r *SpeciesRepository) Search(ctx context.Context, query string, opts species.SearchOptions) ([]species.Species, error) {
	needle := foldText(query)

	baseQuery := `
		SELECT ` + speciesColumns + `
		FROM species
		WHERE (instr(` + foldFunc + `(danish_name), ?) > 0
			OR instr(` + foldFunc + `(english_name), ?) > 0
			OR instr(` + foldFunc + `(latin_name), ?) > 0)
	`
	args := []any{needle, needle, needle}

	if opts.Class != "" {
		baseQuery += " AND species_class = ?"
		args = append(args, string(opts.Class))
	}

	baseQuery += " ORDER BY sort_code, danish_name, species_id"

	if opts.Limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			baseQuery += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	list, err := r.query(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search species: %w", err)
	}
	return list, nil
}
