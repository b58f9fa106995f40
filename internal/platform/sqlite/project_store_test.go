package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSQLiteProjectStoreCreateAndGet(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	got, err := projectStore.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "Linear Algebra", got.Name)
	assert.Equal(t, "beginner", got.Level)
	assert.Equal(t, domain.SyllabusStatusPending, got.SyllabusStatus)
	assert.WithinDuration(t, project.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteProjectStoreDuplicateName(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	createTestProject(t, db, user.ID, "Linear Algebra")

	dup, err := domain.NewProject(user.ID, "Linear Algebra", "", "", "")
	require.NoError(t, err)

	err = projectStore.Create(ctx, dup)
	assert.ErrorIs(t, err, store.ErrProjectNameExists)

	// The same name under a different user is fine.
	other := createTestUser(t, db, "other@example.com")
	theirs, err := domain.NewProject(other.ID, "Linear Algebra", "", "", "")
	require.NoError(t, err)
	assert.NoError(t, projectStore.Create(ctx, theirs))
}

func TestSQLiteProjectStoreCreateUnknownUser(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	orphan, err := domain.NewProject(uuid.New(), "No Owner", "", "", "")
	require.NoError(t, err)

	err = projectStore.Create(ctx, orphan)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestSQLiteProjectStoreListByUser(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")

	first, err := domain.NewProject(user.ID, "First", "", "", "")
	require.NoError(t, err)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, projectStore.Create(ctx, first))

	second, err := domain.NewProject(user.ID, "Second", "", "", "")
	require.NoError(t, err)
	require.NoError(t, projectStore.Create(ctx, second))

	projects, err := projectStore.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "First", projects[0].Name)
	assert.Equal(t, "Second", projects[1].Name)

	// A user with no projects gets an empty slice, not nil.
	other := createTestUser(t, db, "other@example.com")
	none, err := projectStore.ListByUser(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLiteProjectStoreUpdateSyllabusStatus(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	require.NoError(t, projectStore.UpdateSyllabusStatus(ctx, project.ID, domain.SyllabusStatusReady))

	got, err := projectStore.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyllabusStatusReady, got.SyllabusStatus)

	err = projectStore.UpdateSyllabusStatus(ctx, project.ID, domain.SyllabusStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidSyllabusStatus)

	err = projectStore.UpdateSyllabusStatus(ctx, uuid.New(), domain.SyllabusStatusFailed)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestSQLiteProjectStoreDelete(t *testing.T) {
	db := testdb.New(t)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	require.NoError(t, projectStore.Delete(ctx, project.ID))

	_, err := projectStore.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)

	err = projectStore.Delete(ctx, project.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestSQLiteProjectStoreCascadeOnUserDelete(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	projectStore := sqlite.NewSQLiteProjectStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	require.NoError(t, userStore.Delete(ctx, user.ID))

	_, err := projectStore.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}
