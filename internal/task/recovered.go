package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// recoveredTask is a task loaded back from a task store. It carries the
// stored payload only; the runner swaps it for an executable task through
// the TaskRecoverer registered for its type before dispatching it.
type recoveredTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewRecoveredTask wraps a persisted task row in the Task interface. The
// returned task cannot execute on its own; Execute returns an error until a
// recoverer rebuilds the task.
func NewRecoveredTask(
	id uuid.UUID,
	taskType string,
	payload []byte,
	status TaskStatus,
	errorMessage string,
	createdAt time.Time,
	updatedAt time.Time,
) Task {
	return &recoveredTask{
		id:           id,
		taskType:     taskType,
		payload:      payload,
		status:       status,
		errorMessage: errorMessage,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the task's unique identifier
func (t *recoveredTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *recoveredTask) Type() string {
	return t.taskType
}

// Payload returns the task data as a byte slice
func (t *recoveredTask) Payload() []byte {
	return t.payload
}

// Status returns the current task status
func (t *recoveredTask) Status() TaskStatus {
	return t.status
}

// Execute implements Task. A recovered task has no execution function bound.
func (t *recoveredTask) Execute(ctx context.Context) error {
	return errors.New("no execution function defined for recovered task")
}
