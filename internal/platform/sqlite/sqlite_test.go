package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/phrazzld/drill-api/internal/testdb"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// createTestUser inserts a fresh user and returns it.
func createTestUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(email, "correcthorsebattery")
	require.NoError(t, err)

	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	require.NoError(t, userStore.Create(context.Background(), user))

	return user
}

// createTestProject inserts a fresh project owned by userID and returns it.
func createTestProject(t *testing.T, db *sql.DB, userID uuid.UUID, name string) *domain.Project {
	t.Helper()

	project, err := domain.NewProject(userID, name, "beginner", "", "")
	require.NoError(t, err)

	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	require.NoError(t, projectStore.Create(context.Background(), project))

	return project
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := testdb.New(t)

	// All three tables exist after migration.
	for _, table := range []string{"users", "projects", "tasks"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}
