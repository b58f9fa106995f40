package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskFactory implements TaskFactory for testing
type mockTaskFactory struct {
	CreateTaskFn     func(projectID uuid.UUID) (Task, error)
	CreateTaskCalled bool
	LastProjectID    uuid.UUID
}

func (m *mockTaskFactory) CreateTask(projectID uuid.UUID) (Task, error) {
	m.CreateTaskCalled = true
	m.LastProjectID = projectID
	return m.CreateTaskFn(projectID)
}

// mockTaskSubmitter implements TaskSubmitter for testing
type mockTaskSubmitter struct {
	SubmitFn      func(ctx context.Context, task Task) error
	SubmitCalled  bool
	LastSubmitted Task
}

func (m *mockTaskSubmitter) Submit(ctx context.Context, task Task) error {
	m.SubmitCalled = true
	m.LastSubmitted = task
	return m.SubmitFn(ctx, task)
}

func newSyllabusRequestEvent(t *testing.T, projectID uuid.UUID) *events.TaskRequestEvent {
	t.Helper()

	event, err := events.NewTaskRequestEvent(TaskTypeSyllabusGeneration, map[string]string{
		"project_id": projectID.String(),
	})
	require.NoError(t, err)
	return event
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("creates and submits a task for a syllabus generation event", func(t *testing.T) {
		projectID := uuid.New()
		created := NewMockTask(uuid.New(), TaskTypeSyllabusGeneration, nil)

		factory := &mockTaskFactory{
			CreateTaskFn: func(id uuid.UUID) (Task, error) {
				return created, nil
			},
		}
		submitter := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return nil
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		err := handler.HandleEvent(context.Background(), newSyllabusRequestEvent(t, projectID))

		require.NoError(t, err)
		assert.True(t, factory.CreateTaskCalled)
		assert.Equal(t, projectID, factory.LastProjectID)
		assert.True(t, submitter.SubmitCalled)
		assert.Same(t, created, submitter.LastSubmitted)
	})

	t.Run("ignores events with unsupported types", func(t *testing.T) {
		factory := &mockTaskFactory{
			CreateTaskFn: func(id uuid.UUID) (Task, error) {
				t.Fatal("CreateTask should not be called")
				return nil, nil
			},
		}
		submitter := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fatal("Submit should not be called")
				return nil
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		event, err := events.NewTaskRequestEvent("unrelated_event", map[string]string{
			"project_id": uuid.New().String(),
		})
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)

		require.NoError(t, err)
		assert.False(t, factory.CreateTaskCalled)
		assert.False(t, submitter.SubmitCalled)
	})

	t.Run("rejects a payload with an invalid project ID", func(t *testing.T) {
		factory := &mockTaskFactory{
			CreateTaskFn: func(id uuid.UUID) (Task, error) {
				return nil, nil
			},
		}
		submitter := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return nil
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		event, err := events.NewTaskRequestEvent(TaskTypeSyllabusGeneration, map[string]string{
			"project_id": "not-a-uuid",
		})
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)

		assert.Error(t, err)
		assert.ErrorContains(t, err, "invalid project ID")
		assert.False(t, factory.CreateTaskCalled)
	})

	t.Run("propagates task creation failures", func(t *testing.T) {
		createErr := errors.New("creation failed")
		factory := &mockTaskFactory{
			CreateTaskFn: func(id uuid.UUID) (Task, error) {
				return nil, createErr
			},
		}
		submitter := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return nil
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		err := handler.HandleEvent(context.Background(), newSyllabusRequestEvent(t, uuid.New()))

		assert.Error(t, err)
		assert.ErrorIs(t, err, createErr)
		assert.ErrorContains(t, err, "failed to create task")
		assert.False(t, submitter.SubmitCalled)
	})

	t.Run("propagates submission failures", func(t *testing.T) {
		submitErr := errors.New("queue closed")
		factory := &mockTaskFactory{
			CreateTaskFn: func(id uuid.UUID) (Task, error) {
				return NewMockTask(uuid.New(), TaskTypeSyllabusGeneration, nil), nil
			},
		}
		submitter := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return submitErr
			},
		}
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		err := handler.HandleEvent(context.Background(), newSyllabusRequestEvent(t, uuid.New()))

		assert.Error(t, err)
		assert.ErrorIs(t, err, submitErr)
		assert.ErrorContains(t, err, "failed to submit task")
		assert.True(t, factory.CreateTaskCalled)
	})
}
