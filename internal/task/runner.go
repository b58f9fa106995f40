package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Submit when the in-memory queue cannot accept
// another task. The task is already persisted at that point and will be
// picked up by recovery on the next start.
var ErrQueueFull = errors.New("task queue is full")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRecoverer rebuilds an executable task from one loaded out of the
// store. Stored rows carry only the serialized payload, so each task type
// registers a recoverer that binds its execution logic back on. The rebuilt
// task must keep the stored task's ID so status updates target the same row.
type TaskRecoverer interface {
	RecoverTask(t Task) (Task, error)
}

// TaskRunner manages background task processing: a persistent store for
// durability, an in-memory channel feeding a fixed worker pool, and a
// monitor that resets tasks stuck in the processing state.
type TaskRunner struct {
	store      TaskStore
	taskChan   chan Task
	recoverers map[string]TaskRecoverer
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		taskChan:   make(chan Task, config.QueueSize),
		recoverers: make(map[string]TaskRecoverer),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// RegisterRecoverer installs the recoverer for a task type. Call it before
// Start; registration is not synchronized with a running recovery.
func (r *TaskRunner) RegisterRecoverer(taskType string, recoverer TaskRecoverer) {
	r.recoverers[taskType] = recoverer
}

// Submit persists a task and queues it for execution. The store write comes
// first: a task that made it into the database survives a crash even if the
// enqueue below is lost.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start recovers unfinished tasks and launches the worker pool and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner. In-flight task executions run
// to completion before Stop returns.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover requeues tasks left over from a previous run: pending tasks as
// they are, processing tasks reset to pending first, since a task found in
// the processing state at startup was interrupted by a crash.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, task := range pendingTasks {
		task, ok := r.rebuild(ctx, task)
		if !ok {
			continue
		}
		r.requeue(task, "pending")
	}

	for _, task := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		task, ok := r.rebuild(ctx, task)
		if !ok {
			continue
		}
		r.requeue(task, "processing")
	}

	return nil
}

// rebuild swaps a stored row wrapper for an executable task when a
// recoverer is registered for its type. Tasks of unregistered types pass
// through unchanged. A task whose payload cannot be rebuilt is marked
// failed and dropped from the queue.
func (r *TaskRunner) rebuild(ctx context.Context, t Task) (Task, bool) {
	recoverer, ok := r.recoverers[t.Type()]
	if !ok {
		return t, true
	}

	rebuilt, err := recoverer.RecoverTask(t)
	if err != nil {
		r.logger.Error("failed to rebuild recovered task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to update unrecoverable task status",
				"task_id", t.ID(),
				"error", updateErr)
		}
		return nil, false
	}

	return rebuilt, true
}

// requeue offers a recovered task to the queue. A full queue is logged, not
// fatal: the task stays pending in the store and the next start retries it.
func (r *TaskRunner) requeue(task Task, origin string) {
	select {
	case r.taskChan <- task:
	default:
		r.logger.Error("failed to requeue task, queue is full",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"origin_status", origin)
	}
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.taskChan:
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task. Execution gets a fresh
// background context rather than the runner's lifecycle context, so an
// in-flight task drains cleanly during shutdown instead of being cancelled
// halfway through a write.
func (r *TaskRunner) processTask(task Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		return
	}

	logger.Info("task completed successfully")
	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		logger.Error("failed to update task status to completed", "error", updateErr)
	}
}

// stuckTaskMonitor periodically resets tasks that have sat in the processing
// state longer than the configured age and offers them back to the queue.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuckTasks) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuckTasks))

			for _, task := range stuckTasks {
				if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						"task_id", task.ID(),
						"task_type", task.Type(),
						"error", err)
					continue
				}
				r.requeue(task, "stuck")
			}
		}
	}
}
