package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// SyllabusGenerationTaskFactory creates SyllabusGenerationTask instances
type SyllabusGenerationTaskFactory struct {
	generator SyllabusGenerator
	logger    *slog.Logger
}

// NewSyllabusGenerationTaskFactory creates a new factory for
// SyllabusGenerationTasks
func NewSyllabusGenerationTaskFactory(
	generator SyllabusGenerator,
	logger *slog.Logger,
) *SyllabusGenerationTaskFactory {
	return &SyllabusGenerationTaskFactory{
		generator: generator,
		logger:    logger.With("component", "syllabus_generation_task_factory"),
	}
}

// CreateTask creates a new SyllabusGenerationTask for the specified project
func (f *SyllabusGenerationTaskFactory) CreateTask(projectID uuid.UUID) (Task, error) {
	task, err := NewSyllabusGenerationTask(projectID, f.generator, f.logger)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// RecoverTask implements TaskRecoverer. It rebuilds an executable syllabus
// generation task from a stored row, keeping the stored task's ID so status
// updates during execution target that row.
func (f *SyllabusGenerationTaskFactory) RecoverTask(t Task) (Task, error) {
	var payload syllabusGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	rebuilt, err := NewSyllabusGenerationTask(payload.ProjectID, f.generator, f.logger)
	if err != nil {
		return nil, err
	}
	rebuilt.id = t.ID()

	return rebuilt, nil
}
