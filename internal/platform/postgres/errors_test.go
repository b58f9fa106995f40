package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		ConstraintName: constraint,
		Message:        "test error",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: nil,
		},
		{
			name:     "sql.ErrNoRows maps to ErrNotFound",
			err:      sql.ErrNoRows,
			expected: store.ErrNotFound,
		},
		{
			name:     "wrapped sql.ErrNoRows maps to ErrNotFound",
			err:      fmt.Errorf("scan failed: %w", sql.ErrNoRows),
			expected: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to ErrDuplicate",
			err:      pgError("23505", "users_email_key"),
			expected: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to ErrInvalidEntity",
			err:      pgError("23503", "projects_user_id_fkey"),
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to ErrInvalidEntity",
			err:      pgError("23514", "projects_name_check"),
			expected: store.ErrInvalidEntity,
		},
		{
			name:     "not null violation maps to ErrInvalidEntity",
			err:      pgError("23502", ""),
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := MapError(tc.err)
			if tc.expected == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.expected)
		})
	}

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError("23505", "users_email_key")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert failed: %w", pgError("23505", ""))))
	assert.False(t, IsUniqueViolation(pgError("23503", "")))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrNotFound))
	assert.True(t, IsNotFoundError(store.ErrProjectNotFound))
	assert.False(t, IsNotFoundError(store.ErrDuplicate))
	assert.False(t, IsNotFoundError(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	t.Run("rows affected", func(t *testing.T) {
		t.Parallel()

		result := sqlmock.NewResult(0, 1)
		assert.NoError(t, CheckRowsAffected(result, "user"))
	})

	t.Run("zero rows yields not found with entity name", func(t *testing.T) {
		t.Parallel()

		result := sqlmock.NewResult(0, 0)
		err := CheckRowsAffected(result, "project")
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, err.Error(), "project not found")
	})

	t.Run("zero rows without entity name", func(t *testing.T) {
		t.Parallel()

		result := sqlmock.NewResult(0, 0)
		err := CheckRowsAffected(result, "")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, CheckRowsAffected(nil, "user"))
	})
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	t.Run("maps to the specific error when provided", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(pgError("23505", "users_email_key"), "", "", store.ErrEmailExists)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("falls back to entity name message", func(t *testing.T) {
		t.Parallel()

		err := MapUniqueViolation(pgError("23505", ""), "email", "", nil)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.Contains(t, err.Error(), "email already exists")
	})

	t.Run("non-unique errors pass through", func(t *testing.T) {
		t.Parallel()

		original := errors.New("other failure")
		assert.Equal(t, original, MapUniqueViolation(original, "email", "", store.ErrEmailExists))
	})
}
