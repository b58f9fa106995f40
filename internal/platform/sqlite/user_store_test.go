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

func TestSQLiteUserStoreCreateAndGet(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	user, err := domain.NewUser("learner@example.com", "correcthorsebattery")
	require.NoError(t, err)

	require.NoError(t, userStore.Create(ctx, user))

	// The plaintext never reaches the database.
	assert.Empty(t, user.Password)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correcthorsebattery")))

	byID, err := userStore.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.ID)
	assert.Equal(t, "learner@example.com", byID.Email)
	assert.Equal(t, user.HashedPassword, byID.HashedPassword)
	assert.WithinDuration(t, user.CreatedAt, byID.CreatedAt, time.Second)

	byEmail, err := userStore.GetByEmail(ctx, "learner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestSQLiteUserStoreDuplicateEmail(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	first, err := domain.NewUser("taken@example.com", "correcthorsebattery")
	require.NoError(t, err)
	require.NoError(t, userStore.Create(ctx, first))

	second, err := domain.NewUser("taken@example.com", "differentpassword")
	require.NoError(t, err)

	err = userStore.Create(ctx, second)
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestSQLiteUserStoreNotFound(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	_, err := userStore.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = userStore.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	err = userStore.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSQLiteUserStoreUpdate(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "before@example.com")

	user.Email = "after@example.com"
	user.Password = "anothergoodpassword"
	require.NoError(t, userStore.Update(ctx, user))

	updated, err := userStore.GetByEmail(ctx, "after@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.NoError(t,
		bcrypt.CompareHashAndPassword([]byte(updated.HashedPassword), []byte("anothergoodpassword")))

	// The old address no longer resolves.
	_, err = userStore.GetByEmail(ctx, "before@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSQLiteUserStoreDelete(t *testing.T) {
	db := testdb.New(t)
	userStore := sqlite.NewSQLiteUserStore(db, bcrypt.MinCost, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "gone@example.com")

	require.NoError(t, userStore.Delete(ctx, user.ID))

	_, err := userStore.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
