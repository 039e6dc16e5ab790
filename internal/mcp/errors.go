package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/bigyear/internal/assets"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/probable"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/syncer"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var httpErr *syncer.HTTPError
	switch {
	case errors.Is(err, checklist.ErrListNotFound):
		return &APIError{Code: "LIST_NOT_FOUND", Message: "list not found", RecoveryHint: "Call list_lists for valid ids"}
	case errors.Is(err, checklist.ErrEntryNotFound):
		return &APIError{Code: "ENTRY_NOT_FOUND", Message: "entry not found", RecoveryHint: "Call get_list for valid entry ids"}
	case errors.Is(err, checklist.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, dimension.ErrDimensionNotFound):
		return &APIError{Code: "DIMENSION_NOT_FOUND", Message: "dimension not found", RecoveryHint: "Call list_dimensions for valid ids"}
	case errors.Is(err, dimension.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, species.ErrSpeciesNotFound):
		return &APIError{Code: "SPECIES_NOT_FOUND", Message: "species not found"}
	case errors.Is(err, species.ErrInvalidClass):
		return &APIError{Code: "INVALID_CLASS", Message: err.Error(), Details: species.AllClasses}
	case errors.Is(err, probable.ErrInvalidWeek):
		return &APIError{Code: "INVALID_WEEK", Message: err.Error()}
	case errors.Is(err, probable.ErrListRequired):
		return &APIError{Code: "LIST_REQUIRED", Message: "no list given and no active list", RecoveryHint: "Pass list_id or call set_active_list"}
	case errors.Is(err, probable.ErrClassRequired):
		return &APIError{Code: "CLASS_REQUIRED", Message: "species class is required", Details: species.AllClasses}
	case errors.Is(err, assets.ErrNotFound):
		return &APIError{Code: "ASSET_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &httpErr):
		return &APIError{Code: "SYNC_FAILED", Message: httpErr.Error(), Details: map[string]int{"status": httpErr.StatusCode}}
	default:
		return nil
	}
}

// toolError converts err into the error surfaced to the client.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
