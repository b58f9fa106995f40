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
)

func TestSQLiteStateStoreFreshProject(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	// A project created without any quiz history has empty state across the
	// board, never nil collections.
	state, err := stateStore.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, state.ProjectID)
	assert.Empty(t, state.Syllabus)
	assert.NotNil(t, state.Ledger)
	assert.Empty(t, state.Ledger)
	assert.NotNil(t, state.Schedule)
	assert.Empty(t, state.Schedule)
}

func TestSQLiteStateStoreSyllabusRoundTrip(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	syllabus := domain.Syllabus{"Vectors", "Matrices", "Determinants"}
	require.NoError(t, stateStore.SaveSyllabus(ctx, project.ID, syllabus))

	state, err := stateStore.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, syllabus, state.Syllabus)

	err = stateStore.SaveSyllabus(ctx, uuid.New(), syllabus)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)

	err = stateStore.SaveSyllabus(ctx, project.ID, domain.Syllabus{})
	assert.ErrorIs(t, err, domain.ErrSyllabusEmpty)
}

func TestSQLiteStateStoreProgressRoundTrip(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	ledger := domain.Ledger{
		"Vectors":  {Correct: 2, Total: 3},
		"Matrices": {Correct: 0, Total: 1},
	}
	schedule := domain.Schedule{
		"Vectors": {Interval: 2, NextReview: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
	}

	require.NoError(t, stateStore.SaveProgress(ctx, project.ID, ledger, schedule))

	state, err := stateStore.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger, state.Ledger)
	assert.Equal(t, schedule, state.Schedule)

	err = stateStore.SaveProgress(ctx, uuid.New(), ledger, schedule)
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestSQLiteStateStoreResetProgress(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	syllabus := domain.Syllabus{"Vectors", "Matrices"}
	require.NoError(t, stateStore.SaveSyllabus(ctx, project.ID, syllabus))
	require.NoError(t, stateStore.SaveProgress(ctx, project.ID,
		domain.Ledger{"Vectors": {Correct: 1, Total: 2}},
		domain.Schedule{"Vectors": {Interval: 1, NextReview: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)}},
	))

	require.NoError(t, stateStore.ResetProgress(ctx, project.ID))

	// Both progress blobs are cleared together; the syllabus survives.
	state, err := stateStore.LoadState(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Ledger)
	assert.Empty(t, state.Schedule)
	assert.Equal(t, syllabus, state.Syllabus)

	err = stateStore.ResetProgress(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestSQLiteStateStoreCorruptedBlob(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	_, err := db.Exec(`UPDATE projects SET progress = '{broken' WHERE id = ?`, project.ID)
	require.NoError(t, err)

	state, err := stateStore.LoadState(ctx, project.ID)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, domain.ErrDataCorruption)

	// The corrupted blob is reported, never repaired in place.
	var raw string
	require.NoError(t, db.QueryRow(`SELECT progress FROM projects WHERE id = ?`, project.ID).Scan(&raw))
	assert.Equal(t, "{broken", raw)
}

func TestSQLiteStateStoreAnalogies(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)
	ctx := context.Background()

	user := createTestUser(t, db, "learner@example.com")
	project := createTestProject(t, db, user.ID, "Linear Algebra")

	analogies, err := stateStore.LoadAnalogies(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, analogies)

	require.NoError(t, stateStore.SaveAnalogy(ctx, project.ID, "Vectors", "arrows in space"))
	require.NoError(t, stateStore.SaveAnalogy(ctx, project.ID, "Dot Product", "projection strength"))

	analogies, err = stateStore.LoadAnalogies(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Vectors":     "arrows in space",
		"Dot Product": "projection strength",
	}, analogies)

	// Saving again overwrites the existing entry.
	require.NoError(t, stateStore.SaveAnalogy(ctx, project.ID, "Vectors", "directed magnitudes"))
	analogies, err = stateStore.LoadAnalogies(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "directed magnitudes", analogies["Vectors"])
	assert.Len(t, analogies, 2)

	err = stateStore.SaveAnalogy(ctx, project.ID, "", "nameless")
	assert.ErrorIs(t, err, domain.ErrEmptyConceptName)

	err = stateStore.SaveAnalogy(ctx, uuid.New(), "Vectors", "anything")
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestSQLiteStateStoreLoadStateMissingProject(t *testing.T) {
	db := testdb.New(t)
	stateStore := sqlite.NewSQLiteStateStore(db, nil)

	_, err := stateStore.LoadState(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}
