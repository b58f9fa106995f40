// Package targeting composes quiz rounds for a project and grades the
// submitted answers. Round composition adapts to the learner's mastery
// picture: weak and due concepts get a focused quiz, everything else a
// general one over the whole syllabus.
package targeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// RoundState identifies where a quiz round is in its lifecycle.
type RoundState string

// Round lifecycle states. A round starts in RoundSelecting, passes through
// one or two requesting states and RoundValidating, and ends in RoundReady
// or RoundFailed.
const (
	// RoundSelecting means the target concepts are being chosen from the
	// mastery report and the review schedule.
	RoundSelecting RoundState = "selecting"

	// RoundRequestingFocused means a quiz targeting specific weak or due
	// concepts has been requested from the generator.
	RoundRequestingFocused RoundState = "requesting_focused"

	// RoundRequestingGeneral means a quiz over the whole syllabus has been
	// requested from the generator.
	RoundRequestingGeneral RoundState = "requesting_general"

	// RoundValidating means generated items are being checked against the
	// syllabus.
	RoundValidating RoundState = "validating"

	// RoundReady means the round holds validated items and can be answered.
	RoundReady RoundState = "ready"

	// RoundFailed means the round could not produce any usable items.
	RoundFailed RoundState = "failed"
)

// Notice is a non-fatal annotation on a round telling the caller how the
// round differs from the ideal one.
type Notice string

// Notices a round can carry.
const (
	// NoticeTargetedGenerationDegraded means the focused request failed and
	// the round fell back to a general quiz.
	NoticeTargetedGenerationDegraded Notice = "targeted_generation_degraded"

	// NoticeDataCorruptionDetected means corrupted progress records were
	// found, so focused targeting was skipped for this round.
	NoticeDataCorruptionDetected Notice = "data_corruption_detected"
)

// Round is one quiz round for one project. Rounds live in memory only; an
// abandoned round costs nothing and is replaced by the next StartRound.
type Round struct {
	// ID uniquely identifies the round.
	ID uuid.UUID `json:"id"`

	// ProjectID is the project the round belongs to.
	ProjectID uuid.UUID `json:"project_id"`

	// State is the round's position in its lifecycle.
	State RoundState `json:"state"`

	// Focused reports whether the items came from a focused request. A
	// degraded round carries general items, so Focused stays false.
	Focused bool `json:"focused"`

	// TargetConcepts lists the concepts a focused request asked for: weak
	// concepts first, then concepts that are merely due. Empty for general
	// rounds.
	TargetConcepts []string `json:"target_concepts,omitempty"`

	// Items are the validated quiz items. Every PrimaryConcept is a
	// canonical syllabus entry.
	Items []domain.QuizItem `json:"items"`

	// Notices are the annotations accumulated while the round was built.
	Notices []Notice `json:"notices,omitempty"`

	// CreatedAt is when the round was started.
	CreatedAt time.Time `json:"created_at"`
}

// ItemResult is the graded outcome of one answered quiz item.
type ItemResult struct {
	ItemID         int    `json:"item_id"`
	Correct        bool   `json:"correct"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	PrimaryConcept string `json:"primary_concept"`
	Explanation    string `json:"explanation,omitempty"`
}

// GradeResult is the outcome of grading a complete answer set.
type GradeResult struct {
	RoundID      uuid.UUID    `json:"round_id"`
	ProjectID    uuid.UUID    `json:"project_id"`
	CorrectCount int          `json:"correct_count"`
	TotalCount   int          `json:"total_count"`
	Results      []ItemResult `json:"results"`
}

// TargetingService builds quiz rounds for a project and grades submitted
// answers into the attempt ledger and the review schedule.
type TargetingService interface {
	// StartRound composes a new quiz round for the project.
	//
	// Composition runs the round state machine: ensure the project has a
	// syllabus (generating one on the spot if needed), classify the attempt
	// ledger, collect due concepts from the review schedule, pick the
	// targets, request a quiz, and validate the generated items against the
	// syllabus. A focused request that fails for any reason is retried as a
	// general request exactly once and the round carries
	// NoticeTargetedGenerationDegraded. Corrupted progress records disable
	// focused targeting entirely and the round carries
	// NoticeDataCorruptionDetected.
	//
	// The returned round replaces any un-graded round the project had.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can include correlation ID and cancellation
	//   - userID: UUID of the user starting the round
	//   - projectID: UUID of the project to quiz
	//
	// Returns:
	//   - (*Round, nil): A ready round with at least one validated item
	//   - (nil, service.ErrProjectNotFound): If the project does not exist
	//   - (nil, service.ErrNotOwned): If the user does not own the project
	//   - (nil, error): Any other error, wrapped in a *ServiceError
	//
	// Error Handling:
	//   - A missing syllabus that cannot be generated surfaces wrapping
	//     syllabus.ErrSyllabusUnavailable
	//   - An undecodable progress blob surfaces wrapping
	//     domain.ErrDataCorruption and is never repaired here
	//   - A failed general request surfaces wrapping
	//     generation.ErrGenerationFailed and is terminal for the round;
	//     a new round may be started later
	StartRound(ctx context.Context, userID, projectID uuid.UUID) (*Round, error)

	// SubmitAnswers grades a complete answer set against the project's
	// active round and persists the resulting progress updates.
	//
	// The answer set must cover every item of the round exactly once; it is
	// validated in full before anything is graded. All ledger and schedule
	// updates are computed first and then persisted together in one atomic
	// write, so the stored progress always reflects whole rounds. A graded
	// round is consumed: submitting again returns ErrNoActiveRound.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can include correlation ID and cancellation
	//   - userID: UUID of the user submitting answers
	//   - projectID: UUID of the project whose round is being answered
	//   - answers: One answer per round item, each with a confidence level
	//
	// Returns:
	//   - (*GradeResult, nil): Per-item results and the round's totals
	//   - (nil, ErrNoActiveRound): If the project has no round awaiting answers
	//   - (nil, ErrIncompleteAnswers): If the set does not cover the items exactly once
	//   - (nil, service.ErrProjectNotFound): If the project does not exist
	//   - (nil, service.ErrNotOwned): If the user does not own the project
	//   - (nil, error): Any other error, wrapped in a *ServiceError
	//
	// Error Handling:
	//   - Malformed answers surface wrapping domain.ErrValidation
	//   - If the persist fails nothing was written and the round stays
	//     active, so the same answers can be resubmitted
	SubmitAnswers(
		ctx context.Context,
		userID uuid.UUID,
		projectID uuid.UUID,
		answers []domain.Answer,
	) (*GradeResult, error)
}

// Common error types for TargetingService
var (
	// ErrNoActiveRound indicates that the project has no round awaiting
	// answers.
	ErrNoActiveRound = errors.New("no active quiz round for project")

	// ErrIncompleteAnswers indicates that the submitted answers do not
	// cover the round's items exactly once each.
	ErrIncompleteAnswers = errors.New("answers must cover every round item exactly once")
)

// ServiceError wraps errors from the targeting service with additional
// context. Consumers differentiate error types with errors.Is and errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_round", "submit_answers")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewStartRoundError returns a new ServiceError for the start_round operation.
func NewStartRoundError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "start_round",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitAnswersError returns a new ServiceError for the submit_answers operation.
func NewSubmitAnswersError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answers",
		Message:   message,
		Err:       err,
	}
}
