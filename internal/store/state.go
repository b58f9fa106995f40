package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// ProjectState aggregates the learning state stored alongside a project: the
// canonical syllabus, the attempt ledger, and the review schedule. The three
// live in the same projects row so that coupled writes stay atomic.
type ProjectState struct {
	ProjectID uuid.UUID
	Syllabus  domain.Syllabus
	Ledger    domain.Ledger
	Schedule  domain.Schedule
}

// StateStore defines the interface for persisting per-project learning state.
//
// The ledger and the schedule are coupled: grading writes both or neither,
// and a reset clears both or neither. Implementations MUST apply
// SaveProgress and ResetProgress as a single atomic write.
type StateStore interface {
	// LoadState retrieves the full learning state for a project. Missing
	// blobs come back as empty (never nil) collections.
	// Returns ErrProjectNotFound if the project does not exist.
	// Returns domain.ErrDataCorruption (wrapped) if a stored blob cannot be
	// decoded; corrupted state is reported, never repaired in place.
	LoadState(ctx context.Context, projectID uuid.UUID) (*ProjectState, error)

	// SaveSyllabus replaces the project's canonical syllabus.
	// Returns ErrProjectNotFound if the project does not exist.
	// Returns validation errors from the domain Syllabus if it is invalid.
	SaveSyllabus(ctx context.Context, projectID uuid.UUID, syllabus domain.Syllabus) error

	// SaveProgress replaces the ledger and the schedule together in one
	// atomic write.
	// Returns ErrProjectNotFound if the project does not exist.
	SaveProgress(ctx context.Context, projectID uuid.UUID, ledger domain.Ledger, schedule domain.Schedule) error

	// ResetProgress clears the ledger and the schedule together in one
	// atomic write. The syllabus is untouched.
	// Returns ErrProjectNotFound if the project does not exist.
	ResetProgress(ctx context.Context, projectID uuid.UUID) error

	// LoadAnalogies retrieves the cached concept analogies for a project,
	// keyed by concept name. Returns an empty map when none are stored.
	// Returns ErrProjectNotFound if the project does not exist.
	LoadAnalogies(ctx context.Context, projectID uuid.UUID) (map[string]string, error)

	// SaveAnalogy stores or replaces the cached analogy for one concept.
	// Returns ErrProjectNotFound if the project does not exist.
	SaveAnalogy(ctx context.Context, projectID uuid.UUID, concept, analogy string) error

	// WithTx returns a new StateStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) StateStore
}
