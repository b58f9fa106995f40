package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// Task construction errors
var (
	ErrNilSyllabusGenerator = errors.New("syllabus generator cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptyProjectID       = errors.New("project ID cannot be empty")
)

// SyllabusGenerator ensures a project has a stored syllabus, generating and
// saving one when it does not. The project service satisfies this interface;
// the task package depends on it rather than on the service directly.
type SyllabusGenerator interface {
	EnsureSyllabus(ctx context.Context, projectID uuid.UUID) (domain.Syllabus, error)
}

// syllabusGenerationPayload represents the serialized data stored in the task
type syllabusGenerationPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// SyllabusGenerationTask implements the Task interface for generating a
// project's syllabus in the background.
type SyllabusGenerationTask struct {
	id        uuid.UUID
	projectID uuid.UUID
	generator SyllabusGenerator
	logger    *slog.Logger
	status    TaskStatus
}

// NewSyllabusGenerationTask creates a new syllabus generation task.
func NewSyllabusGenerationTask(
	projectID uuid.UUID,
	generator SyllabusGenerator,
	logger *slog.Logger,
) (*SyllabusGenerationTask, error) {
	if generator == nil {
		return nil, ErrNilSyllabusGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if projectID == uuid.Nil {
		return nil, ErrEmptyProjectID
	}

	return &SyllabusGenerationTask{
		id:        uuid.New(),
		projectID: projectID,
		generator: generator,
		logger: logger.With(
			"task_type", TaskTypeSyllabusGeneration,
			"project_id", projectID,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SyllabusGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *SyllabusGenerationTask) Type() string {
	return TaskTypeSyllabusGeneration
}

// Payload returns the task data as a byte slice
func (t *SyllabusGenerationTask) Payload() []byte {
	payload := syllabusGenerationPayload{
		ProjectID: t.projectID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *SyllabusGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute generates and stores the project's syllabus. EnsureSyllabus is
// idempotent and keeps the project's syllabus status column current, so a
// task that is retried or recovered after a crash re-checks the stored state
// instead of generating twice.
func (t *SyllabusGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting syllabus generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	syl, err := t.generator.EnsureSyllabus(ctx, t.projectID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("syllabus generation failed", "error", err)
		return fmt.Errorf("failed to ensure syllabus: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("syllabus generation task completed", "concept_count", len(syl))
	return nil
}
