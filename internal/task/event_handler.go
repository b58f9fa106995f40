package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/events"
)

// TaskFactory builds a runnable task for the project named in an event
// payload.
type TaskFactory interface {
	CreateTask(projectID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface: it
// turns task request events into runnable tasks and hands them to the
// runner.
type TaskFactoryEventHandler struct {
	factory TaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	factory TaskFactory,
	runner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks. Events of
// types this handler does not know are ignored, not failed, so unrelated
// handlers on the same emitter never see spurious errors.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeSyllabusGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		ProjectID string `json:"project_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	projectID, err := uuid.Parse(payload.ProjectID)
	if err != nil {
		h.logger.Error("invalid project ID",
			"error", err,
			"project_id", payload.ProjectID,
			"event_id", event.ID)
		return fmt.Errorf("invalid project ID: %w", err)
	}

	task, err := h.factory.CreateTask(projectID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"project_id", projectID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"project_id", projectID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"project_id", projectID,
		"event_id", event.ID)
	return nil
}
