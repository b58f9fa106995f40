package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/drill-api/internal/store"
)

// SQLite reports constraint failures through the error message rather than a
// structured code, so detection matches on the stable fragments of that text.
const (
	uniqueViolationText     = "UNIQUE constraint failed"
	foreignKeyViolationText = "FOREIGN KEY constraint failed"
	notNullViolationText    = "NOT NULL constraint failed"
	checkViolationText      = "CHECK constraint failed"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better debugging information.
// This function should be used in all database operations to ensure consistent error handling.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	switch {
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
	case strings.Contains(err.Error(), notNullViolationText):
		return fmt.Errorf("%w: not null violation: %v", store.ErrInvalidEntity, err)
	case strings.Contains(err.Error(), checkViolationText):
		return fmt.Errorf("%w: check constraint violation: %v", store.ErrInvalidEntity, err)
	}

	// Return the original error for errors that don't have specific mappings
	return err
}

// IsUniqueViolation checks if the given error is a SQLite unique constraint violation.
// This is useful for detecting duplicate records that violate unique constraints.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), uniqueViolationText)
}

// IsForeignKeyViolation checks if the given error is a SQLite foreign key constraint violation.
// This occurs when an operation would violate referential integrity constraints.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), foreignKeyViolationText)
}

// IsNotFoundError checks if the given error represents a "not found" scenario.
// This handles both sql.ErrNoRows and errors that are or wrap store.ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, store.ErrNotFound)
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns store.ErrNotFound.
// This is useful for UPDATE and DELETE operations where the absence of affected rows
// typically indicates that the target record doesn't exist.
func CheckRowsAffected(result sql.Result, entityName string) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if entityName == "" {
			return store.ErrNotFound
		}
		return fmt.Errorf("%w: %s not found", store.ErrNotFound, entityName)
	}

	return nil
}

// MapUniqueViolation maps a SQLite unique violation error to a more specific error.
// If the error is not a unique violation, it returns the original error.
func MapUniqueViolation(err error, entityName string, specificError error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	if specificError != nil {
		return fmt.Errorf("%w: %v", specificError, err)
	}

	if entityName != "" {
		return fmt.Errorf("%w: %s already exists: %v", store.ErrDuplicate, entityName, err)
	}

	return fmt.Errorf("%w: duplicate entry: %v", store.ErrDuplicate, err)
}
