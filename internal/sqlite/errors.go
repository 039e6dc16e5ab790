package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rpggio/bigyear/internal/repository"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireAffected maps a zero-row write to repository.ErrNotFound.
func requireAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for %s: %w", what, err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
