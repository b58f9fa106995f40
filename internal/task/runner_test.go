package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunnerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newQueuedMockTask() *MockTask {
	return NewMockTask(uuid.New(), "mock_task", nil)
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	logger := newRunnerTestLogger()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 2
		runner := NewTaskRunner(store, config, logger)

		task := newQueuedMockTask()
		err := runner.Submit(context.Background(), task)

		assert.NoError(t, err)

		// The task must be durable before it is queued.
		pendingTasks, _ := store.GetPendingTasks(context.Background())
		assert.Contains(t, extractTaskIDs(pendingTasks), task.ID())
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(store, config, logger)

		err := runner.Submit(context.Background(), newQueuedMockTask())
		require.NoError(t, err)

		// The runner is not started, so the first task still occupies the
		// queue slot.
		overflow := newQueuedMockTask()
		err = runner.Submit(context.Background(), overflow)

		assert.ErrorIs(t, err, ErrQueueFull)

		// The overflowing task was persisted anyway and recovery can pick
		// it up later.
		pendingTasks, _ := store.GetPendingTasks(context.Background())
		assert.Contains(t, extractTaskIDs(pendingTasks), overflow.ID())
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		store.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("mock store error")
		}
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)

		err := runner.Submit(context.Background(), newQueuedMockTask())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})
}

func TestTaskRunner_Start_and_Processing(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10
	runner := NewTaskRunner(store, config, newRunnerTestLogger())

	taskCompletedChan := make(chan uuid.UUID, 5)
	taskIDs := make([]uuid.UUID, 0, 3)

	for i := 0; i < 3; i++ {
		task := newQueuedMockTask()
		taskIDs = append(taskIDs, task.ID())
		task.ExecuteFn = func(ctx context.Context) error {
			taskCompletedChan <- task.ID()
			return nil
		}

		err := runner.Submit(context.Background(), task)
		require.NoError(t, err)
	}

	err := runner.Start()
	require.NoError(t, err)

	completedTasks := make(map[uuid.UUID]bool)
	timeout := time.After(2 * time.Second)

taskWaitLoop:
	for len(completedTasks) < 3 {
		select {
		case taskID := <-taskCompletedChan:
			completedTasks[taskID] = true
		case <-timeout:
			break taskWaitLoop
		}
	}

	runner.Stop()

	for _, id := range taskIDs {
		assert.True(t, completedTasks[id], "Task %s should have been completed", id)
	}
	assert.Len(t, completedTasks, 3, "All 3 tasks should have been completed")
}

func TestTaskRunner_TaskFailure(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), newRunnerTestLogger())

	task := newQueuedMockTask()
	task.ExecuteFn = func(ctx context.Context) error {
		return errors.New("intentional test failure")
	}

	err := runner.Submit(context.Background(), task)
	require.NoError(t, err)

	err = runner.Start()
	require.NoError(t, err)

	// The failure is recorded in the store, not returned anywhere, so poll
	// for the status transition.
	require.Eventually(t, func() bool {
		status, ok := store.GetTaskStatus(task.ID())
		return ok && status == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond, "task should be marked as failed")

	runner.Stop()
}

func TestTaskRunner_Recover(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()

	pendingTask := newQueuedMockTask()
	processingTask := newQueuedMockTask()

	require.NoError(t, store.SaveTask(context.Background(), pendingTask))
	require.NoError(t, store.SaveTask(context.Background(), processingTask))
	require.NoError(t,
		store.UpdateTaskStatus(context.Background(), processingTask.ID(), TaskStatusProcessing, ""))

	taskCompletedChan := make(chan uuid.UUID, 5)

	// Recovery requeues the stored instances, so wire the completion
	// signal into those.
	for _, storedTask := range store.tasks {
		mockTask := storedTask.(*MockTask)
		mockTask.ExecuteFn = func(ctx context.Context) error {
			taskCompletedChan <- mockTask.ID()
			return nil
		}
	}

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), newRunnerTestLogger())

	// Start triggers recovery: the pending task is requeued as is, the
	// processing task is reset to pending and requeued.
	err := runner.Start()
	require.NoError(t, err)

	expectedTasks := map[uuid.UUID]bool{
		pendingTask.ID():    false,
		processingTask.ID(): false,
	}
	timeout := time.After(2 * time.Second)

taskWaitLoop:
	for {
		allCompleted := true
		for _, completed := range expectedTasks {
			if !completed {
				allCompleted = false
				break
			}
		}
		if allCompleted {
			break taskWaitLoop
		}

		select {
		case taskID := <-taskCompletedChan:
			expectedTasks[taskID] = true
		case <-timeout:
			break taskWaitLoop
		}
	}

	runner.Stop()

	assert.True(t, expectedTasks[pendingTask.ID()], "Pending task should have been completed")
	assert.True(t, expectedTasks[processingTask.ID()], "Processing task should have been completed")
}

func TestTaskRunner_RecoverRebuildsStoredTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	projectID := uuid.New()

	payload, err := json.Marshal(map[string]string{"project_id": projectID.String()})
	require.NoError(t, err)

	// A row as the task store would return it after a restart: correct
	// type and payload, no execution logic.
	row := NewRecoveredTask(
		uuid.New(), TaskTypeSyllabusGeneration, payload,
		TaskStatusPending, "", time.Now(), time.Now())
	require.NoError(t, store.SaveTask(context.Background(), row))

	executed := make(chan uuid.UUID, 1)
	generator := &stubSyllabusGenerator{
		EnsureSyllabusFn: func(ctx context.Context, id uuid.UUID) (domain.Syllabus, error) {
			executed <- id
			return domain.Syllabus{"Recursion"}, nil
		},
	}
	logger := newRunnerTestLogger()
	factory := NewSyllabusGenerationTaskFactory(generator, logger)

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)
	runner.RegisterRecoverer(TaskTypeSyllabusGeneration, factory)

	err = runner.Start()
	require.NoError(t, err)

	select {
	case id := <-executed:
		assert.Equal(t, projectID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for recovered task to be executed")
	}

	// The rebuilt task keeps the stored row's ID, so the completion lands
	// on that row.
	require.Eventually(t, func() bool {
		status, ok := store.GetTaskStatus(row.ID())
		return ok && status == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond, "stored row should be marked completed")

	runner.Stop()
}

func TestTaskRunner_RecoverDropsUnrecoverableTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()

	row := NewRecoveredTask(
		uuid.New(), TaskTypeSyllabusGeneration, []byte("{broken"),
		TaskStatusPending, "", time.Now(), time.Now())
	require.NoError(t, store.SaveTask(context.Background(), row))

	logger := newRunnerTestLogger()
	factory := NewSyllabusGenerationTaskFactory(&stubSyllabusGenerator{}, logger)

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)
	runner.RegisterRecoverer(TaskTypeSyllabusGeneration, factory)

	err := runner.Start()
	require.NoError(t, err)
	runner.Stop()

	status, ok := store.GetTaskStatus(row.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, status)
}

func TestTaskRunner_StuckTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()

	stuckTask := newQueuedMockTask()
	require.NoError(t, store.SaveTask(context.Background(), stuckTask))
	require.NoError(t,
		store.UpdateTaskStatus(context.Background(), stuckTask.ID(), TaskStatusProcessing, ""))

	// Backdate the status change so the task counts as stuck.
	store.taskStatusTimes[stuckTask.ID()] = time.Now().Add(-30 * time.Minute)

	taskCompletedChan := make(chan uuid.UUID, 5)
	mockTask := store.tasks[stuckTask.ID()].(*MockTask)
	mockTask.ExecuteFn = func(ctx context.Context) error {
		taskCompletedChan <- stuckTask.ID()
		return nil
	}

	config := DefaultTaskRunnerConfig()
	config.StuckTaskAge = 15 * time.Minute
	config.StuckTaskCheckInterval = 100 * time.Millisecond

	runner := NewTaskRunner(store, config, newRunnerTestLogger())

	err := runner.Start()
	require.NoError(t, err)

	select {
	case taskID := <-taskCompletedChan:
		assert.Equal(t, stuckTask.ID(), taskID, "Stuck task should have been executed")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for stuck task to be executed")
	}

	runner.Stop()
}

func extractTaskIDs(tasks []Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID()
	}
	return ids
}
