package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTask is a minimal task.Task for exercising the store.
type stubTask struct {
	id      uuid.UUID
	typ     string
	payload []byte
	status  task.TaskStatus
}

func (t *stubTask) ID() uuid.UUID { return t.id }

func (t *stubTask) Type() string { return t.typ }

func (t *stubTask) Payload() []byte { return t.payload }

func (t *stubTask) Status() task.TaskStatus { return t.status }

func (t *stubTask) Execute(context.Context) error { return nil }

func newTaskStoreWithMock(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresTaskStore(db), mock
}

func TestTaskStoreSaveTask(t *testing.T) {
	taskStore, mock := newTaskStoreWithMock(t)

	tk := &stubTask{
		id:      uuid.New(),
		typ:     "syllabus_generation",
		payload: []byte(`{"project_id":"abc"}`),
		status:  task.TaskStatusPending,
	}

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(tk.id, tk.typ, `{"project_id":"abc"}`, string(task.TaskStatusPending),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := taskStore.SaveTask(context.Background(), tk)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreUpdateTaskStatus(t *testing.T) {
	t.Run("updates status and error message", func(t *testing.T) {
		taskStore, mock := newTaskStoreWithMock(t)

		taskID := uuid.New()
		mock.ExpectExec("UPDATE tasks").
			WithArgs(string(task.TaskStatusFailed), "generation failed", sqlmock.AnyArg(), taskID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := taskStore.UpdateTaskStatus(context.Background(), taskID, task.TaskStatusFailed, "generation failed")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing task is a no-op", func(t *testing.T) {
		taskStore, mock := newTaskStoreWithMock(t)

		mock.ExpectExec("UPDATE tasks").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := taskStore.UpdateTaskStatus(context.Background(), uuid.New(), task.TaskStatusCompleted, "")
		assert.NoError(t, err)
	})
}

func TestTaskStoreGetPendingTasks(t *testing.T) {
	taskStore, mock := newTaskStoreWithMock(t)

	id := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "type", "payload", "status", "error_message", "created_at", "updated_at"}).
		AddRow(id.String(), "syllabus_generation", []byte(`{"project_id":"abc"}`), "pending", nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM tasks").
		WithArgs(string(task.TaskStatusPending)).
		WillReturnRows(rows)

	tasks, err := taskStore.GetPendingTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID())
	assert.Equal(t, "syllabus_generation", tasks[0].Type())
	assert.Equal(t, task.TaskStatusPending, tasks[0].Status())
	assert.JSONEq(t, `{"project_id":"abc"}`, string(tasks[0].Payload()))

	// A recovered task has no bound execution function yet.
	assert.Error(t, tasks[0].Execute(context.Background()))
}
