package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/syllabus"
	"github.com/phrazzld/drill-api/internal/task"
)

// ProjectService provides project lifecycle operations: CRUD, syllabus
// generation, and progress resets.
type ProjectService interface {
	// CreateProject creates a new project for the given user and emits an
	// event requesting asynchronous syllabus generation. The project is
	// returned with syllabus status pending; callers that need the syllabus
	// before the background task lands should use GetSyllabus, which
	// generates synchronously when the stored syllabus is still empty.
	CreateProject(
		ctx context.Context,
		userID uuid.UUID,
		name, level, notes, sourceText string,
	) (*domain.Project, error)

	// GetProject retrieves a project by ID.
	// Returns ErrProjectNotFound if it does not exist and ErrNotOwned if it
	// belongs to a different user.
	GetProject(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)

	// ListProjects retrieves all projects owned by the given user, ordered
	// by creation time.
	ListProjects(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// DeleteProject removes a project and all of its learning state.
	DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error

	// GetSyllabus returns the project's canonical syllabus, generating it
	// synchronously if it has not been stored yet.
	GetSyllabus(ctx context.Context, userID, projectID uuid.UUID) (domain.Syllabus, error)

	// EnsureSyllabus returns the stored syllabus, generating and storing it
	// first when it is empty. It performs no ownership check; it is the
	// entry point for background tasks and for internal callers that have
	// already authorized the access.
	// Returns syllabus.ErrSyllabusUnavailable (wrapping the cause) when the
	// syllabus is still empty after a generation attempt.
	EnsureSyllabus(ctx context.Context, projectID uuid.UUID) (domain.Syllabus, error)

	// RegenerateSyllabus discards the stored syllabus and generates a fresh
	// one. Regeneration is refused with ErrLedgerNotEmpty while graded
	// attempts exist: the ledger is keyed by the current syllabus's concept
	// names, and regenerating under it would detach recorded progress from
	// the concepts it measures. Callers must reset progress first.
	RegenerateSyllabus(ctx context.Context, userID, projectID uuid.UUID) (domain.Syllabus, error)

	// ResetProgress clears the project's attempt ledger and review schedule
	// together in one atomic write. The syllabus is untouched. This is the
	// only operation that resolves detected data corruption.
	ResetProgress(ctx context.Context, userID, projectID uuid.UUID) error
}

// ProjectServiceError wraps errors from the project service with context.
type ProjectServiceError struct {
	// Operation is the operation that failed (e.g., "create_project")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ProjectServiceError.
func (e *ProjectServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("project service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("project service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ProjectServiceError) Unwrap() error {
	return e.Err
}

// NewProjectServiceError creates a new ProjectServiceError.
// It returns known sentinel errors directly without wrapping.
func NewProjectServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Service-level sentinels pass through untouched.
	if errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrNotOwned) ||
		errors.Is(err, ErrLedgerNotEmpty) {
		return err
	}

	// Store-level not-found maps to the service-level sentinel.
	if errors.Is(err, store.ErrProjectNotFound) {
		return ErrProjectNotFound
	}

	return &ProjectServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	projectStore store.ProjectStore
	stateStore   store.StateStore
	generator    generation.Generator
	eventEmitter events.EventEmitter
	locker       *ProjectLocker
	db           *sql.DB
	logger       *slog.Logger
}

// NewProjectService creates a new ProjectService.
// It returns an error if any of the required dependencies are nil.
func NewProjectService(
	projectStore store.ProjectStore,
	stateStore store.StateStore,
	generator generation.Generator,
	eventEmitter events.EventEmitter,
	locker *ProjectLocker,
	db *sql.DB,
	logger *slog.Logger,
) (ProjectService, error) {
	if projectStore == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "projectStore cannot be nil",
		}
	}
	if stateStore == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "stateStore cannot be nil",
		}
	}
	if generator == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if locker == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "locker cannot be nil",
		}
	}
	if db == nil {
		return nil, &ProjectServiceError{
			Operation: "create_service",
			Message:   "db cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &projectServiceImpl{
		projectStore: projectStore,
		stateStore:   stateStore,
		generator:    generator,
		eventEmitter: eventEmitter,
		locker:       locker,
		db:           db,
		logger:       logger.With("component", "project_service"),
	}, nil
}

// syllabusTaskPayload is the payload carried by syllabus generation task
// request events.
type syllabusTaskPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
}

// CreateProject creates a new project with a pending syllabus and emits a
// TaskRequestEvent so the syllabus is generated in the background.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	userID uuid.UUID,
	name, level, notes, sourceText string,
) (*domain.Project, error) {
	project, err := domain.NewProject(userID, name, level, notes, sourceText)
	if err != nil {
		s.logger.Error("failed to create project object",
			"error", err,
			"user_id", userID)
		return nil, NewProjectServiceError("create_project", "failed to create project object", err)
	}

	err = s.projectStore.Create(ctx, project)
	if err != nil {
		if errors.Is(err, store.ErrProjectNameExists) {
			s.logger.Debug("attempted to create project with existing name",
				"user_id", userID,
				"name", project.Name)
		} else {
			s.logger.Error("failed to save project to database",
				"error", err,
				"user_id", userID,
				"name", project.Name)
		}
		return nil, NewProjectServiceError("create_project", "failed to save project", err)
	}

	s.logger.Info("project created successfully",
		"project_id", project.ID,
		"user_id", userID,
		"name", project.Name)

	event, err := events.NewTaskRequestEvent(
		task.TaskTypeSyllabusGeneration,
		syllabusTaskPayload{ProjectID: project.ID},
	)
	if err != nil {
		s.logger.Error("failed to create syllabus generation event",
			"error", err,
			"project_id", project.ID)
		return nil, NewProjectServiceError("create_project", "failed to create event", err)
	}

	err = s.eventEmitter.EmitEvent(ctx, event)
	if err != nil {
		s.logger.Error("failed to emit syllabus generation event",
			"error", err,
			"project_id", project.ID,
			"event_id", event.ID)
		return nil, NewProjectServiceError("create_project", "failed to emit event", err)
	}

	s.logger.Info("syllabus generation event emitted successfully",
		"project_id", project.ID,
		"event_id", event.ID)

	return project, nil
}

// GetProject retrieves a project after verifying ownership.
func (s *projectServiceImpl) GetProject(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (*domain.Project, error) {
	return s.ownedProject(ctx, userID, projectID)
}

// ListProjects retrieves all projects owned by the given user.
func (s *projectServiceImpl) ListProjects(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Project, error) {
	projects, err := s.projectStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list projects",
			"error", err,
			"user_id", userID)
		return nil, NewProjectServiceError("list_projects", "failed to list projects", err)
	}

	s.logger.Debug("listed projects",
		"user_id", userID,
		"count", len(projects))

	return projects, nil
}

// DeleteProject removes a project and all of its learning state after
// verifying ownership. The project lock is held so a delete never interleaves
// with an in-flight generation or grading write on the same project.
func (s *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}

	unlock := s.locker.Lock(projectID)
	defer unlock()

	err := s.projectStore.Delete(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to delete project",
			"error", err,
			"project_id", projectID)
		return NewProjectServiceError("delete_project", "failed to delete project", err)
	}

	s.logger.Info("project deleted",
		"project_id", projectID,
		"user_id", userID)

	return nil
}

// GetSyllabus returns the project's syllabus after verifying ownership,
// generating it synchronously when it has not been stored yet.
func (s *projectServiceImpl) GetSyllabus(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (domain.Syllabus, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.EnsureSyllabus(ctx, projectID)
}

// EnsureSyllabus returns the stored syllabus, generating and storing one
// first when it is empty. Generation keys off the stored syllabus, not the
// status column: a stale processing or failed status from an interrupted run
// self-heals on the next access, and a concurrent caller that lost the lock
// race finds the winner's syllabus instead of generating a duplicate.
func (s *projectServiceImpl) EnsureSyllabus(
	ctx context.Context,
	projectID uuid.UUID,
) (domain.Syllabus, error) {
	unlock := s.locker.Lock(projectID)
	defer unlock()

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to retrieve project for syllabus",
			"error", err,
			"project_id", projectID)
		return nil, NewProjectServiceError("ensure_syllabus", "failed to retrieve project", err)
	}

	state, err := s.stateStore.LoadState(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to load project state",
			"error", err,
			"project_id", projectID)
		return nil, NewProjectServiceError("ensure_syllabus", "failed to load project state", err)
	}

	if len(state.Syllabus) > 0 {
		return state.Syllabus, nil
	}

	s.logger.Info("syllabus missing, generating synchronously",
		"project_id", projectID,
		"syllabus_status", project.SyllabusStatus)

	return s.generateAndStoreSyllabus(ctx, project)
}

// RegenerateSyllabus replaces the stored syllabus with a freshly generated
// one. Refused while graded attempts exist.
func (s *projectServiceImpl) RegenerateSyllabus(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (domain.Syllabus, error) {
	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(projectID)
	defer unlock()

	state, err := s.stateStore.LoadState(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to load project state for regeneration",
			"error", err,
			"project_id", projectID)
		return nil, NewProjectServiceError("regenerate_syllabus", "failed to load project state", err)
	}

	if len(state.Ledger) > 0 {
		s.logger.Debug("refused syllabus regeneration over recorded progress",
			"project_id", projectID,
			"ledger_concepts", len(state.Ledger))
		return nil, ErrLedgerNotEmpty
	}

	return s.generateAndStoreSyllabus(ctx, project)
}

// ResetProgress clears the ledger and the review schedule together.
func (s *projectServiceImpl) ResetProgress(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return err
	}

	unlock := s.locker.Lock(projectID)
	defer unlock()

	err := s.stateStore.ResetProgress(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to reset progress",
			"error", err,
			"project_id", projectID)
		return NewProjectServiceError("reset_progress", "failed to reset progress", err)
	}

	s.logger.Info("progress reset",
		"project_id", projectID,
		"user_id", userID)

	return nil
}

// generateAndStoreSyllabus runs one generation attempt and persists the
// result. The syllabus write and the status flip to ready happen in a single
// transaction; on any failure the status is marked failed and the error is
// reported as syllabus.ErrSyllabusUnavailable with the cause attached.
// Callers must hold the project lock.
func (s *projectServiceImpl) generateAndStoreSyllabus(
	ctx context.Context,
	project *domain.Project,
) (domain.Syllabus, error) {
	if err := s.projectStore.UpdateSyllabusStatus(ctx, project.ID, domain.SyllabusStatusProcessing); err != nil {
		s.logger.Error("failed to mark syllabus generation processing",
			"error", err,
			"project_id", project.ID)
		return nil, NewProjectServiceError("generate_syllabus", "failed to update status", err)
	}

	generated, err := s.generator.GenerateSyllabus(ctx, generation.SyllabusRequest{
		ProjectName: project.Name,
		Level:       project.Level,
		Notes:       project.Notes,
		SourceText:  project.SourceText,
	})
	if err == nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			if txErr := s.stateStore.WithTx(tx).SaveSyllabus(ctx, project.ID, generated); txErr != nil {
				return txErr
			}
			return s.projectStore.WithTx(tx).
				UpdateSyllabusStatus(ctx, project.ID, domain.SyllabusStatusReady)
		})
	}

	if err != nil {
		s.logger.Error("syllabus generation failed",
			"error", err,
			"project_id", project.ID)
		if statusErr := s.projectStore.UpdateSyllabusStatus(
			ctx, project.ID, domain.SyllabusStatusFailed,
		); statusErr != nil {
			s.logger.Error("failed to record failed syllabus status",
				"error", statusErr,
				"project_id", project.ID)
		}
		return nil, fmt.Errorf("%w: %w", syllabus.ErrSyllabusUnavailable, err)
	}

	s.logger.Info("syllabus generated and stored",
		"project_id", project.ID,
		"concept_count", len(generated))

	return generated, nil
}

// ownedProject retrieves a project and verifies the caller owns it.
func (s *projectServiceImpl) ownedProject(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			s.logger.Debug("project not found",
				"project_id", projectID)
			return nil, ErrProjectNotFound
		}
		s.logger.Error("failed to retrieve project",
			"error", err,
			"project_id", projectID)
		return nil, NewProjectServiceError("get_project", "failed to retrieve project", err)
	}

	if project.UserID != userID {
		s.logger.Warn("project access denied",
			"project_id", projectID,
			"owner_id", project.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	return project, nil
}
