package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// Create saves a new project to the store.
	// It handles domain validation internally.
	// Returns ErrProjectNameExists if the user already has a project with
	// the same name.
	// Returns validation errors from the domain Project if data is invalid.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListByUser retrieves all projects owned by the given user, ordered by
	// creation time. Returns an empty slice when the user has no projects.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// UpdateSyllabusStatus updates the syllabus generation status of an
	// existing project.
	// Returns ErrProjectNotFound if the project does not exist.
	// Returns validation errors if the status is invalid.
	UpdateSyllabusStatus(ctx context.Context, id uuid.UUID, status domain.SyllabusStatus) error

	// Delete removes a project and all of its stored state by ID.
	// Returns ErrProjectNotFound if the project does not exist.
	// This operation is permanent and cannot be undone.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ProjectStore
}
