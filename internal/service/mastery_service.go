package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/mastery"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/syllabus"
)

// resetInstruction is the message attached to mastery reports when corrupted
// progress records are detected. Corruption is never repaired in place; only
// a full progress reset clears it.
const resetInstruction = "corrupted progress records detected; focused targeting is disabled " +
	"until progress is reset (the reset clears the attempt ledger and the review schedule together)"

// SyllabusProvider yields the canonical syllabus for a project, generating it
// when absent. ProjectService satisfies this interface.
type SyllabusProvider interface {
	EnsureSyllabus(ctx context.Context, projectID uuid.UUID) (domain.Syllabus, error)
}

// ConceptStatus merges one concept's mastery classification with its review
// scheduling state. Scheduling fields are zero for concepts that have never
// been reviewed.
type ConceptStatus struct {
	Concept       string        `json:"concept"`
	Correct       int           `json:"correct"`
	Total         int           `json:"total"`
	Ratio         float64       `json:"ratio"`
	Level         mastery.Level `json:"level"`
	LowConfidence bool          `json:"low_confidence,omitempty"`
	IntervalDays  int           `json:"interval_days,omitempty"`
	NextReview    string        `json:"next_review,omitempty"`
	Due           bool          `json:"due,omitempty"`
}

// MasteryReport is the full learning picture for one project: every syllabus
// concept (tested or not) plus any stray ledger records, with the weak and
// corrupted subsets called out for quick consumption.
type MasteryReport struct {
	ProjectID        uuid.UUID       `json:"project_id"`
	Concepts         []ConceptStatus `json:"concepts"`
	WeakConcepts     []string        `json:"weak_concepts"`
	CorruptedRecords []string        `json:"corrupted_records,omitempty"`
	ResetInstruction string          `json:"reset_instruction,omitempty"`
}

// MasteryService provides read access to a project's learning state: the
// mastery report and cached concept analogies.
type MasteryService interface {
	// GetMasteryReport builds the mastery report for a project from its
	// stored ledger, syllabus, and review schedule. The report is a pure
	// view: it never generates a missing syllabus and never repairs
	// corrupted records. A ledger or schedule blob that cannot be decoded
	// at all surfaces as domain.ErrDataCorruption.
	GetMasteryReport(ctx context.Context, userID, projectID uuid.UUID) (*MasteryReport, error)

	// GetAnalogy returns an intuitive explanation of one syllabus concept,
	// generating and caching it on first request. The concept is resolved
	// against the canonical syllabus first; labels that resolve to no entry
	// return syllabus.ErrNoMatch.
	GetAnalogy(ctx context.Context, userID, projectID uuid.UUID, concept string) (string, error)
}

// MasteryServiceError wraps errors from the mastery service with context.
type MasteryServiceError struct {
	// Operation is the operation that failed (e.g., "get_mastery_report")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MasteryServiceError.
func (e *MasteryServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mastery service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("mastery service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MasteryServiceError) Unwrap() error {
	return e.Err
}

// NewMasteryServiceError creates a new MasteryServiceError.
// It returns known sentinel errors directly without wrapping.
func NewMasteryServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrNotOwned) {
		return err
	}

	if errors.Is(err, store.ErrProjectNotFound) {
		return ErrProjectNotFound
	}

	return &MasteryServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// masteryServiceImpl implements the MasteryService interface
type masteryServiceImpl struct {
	projectStore     store.ProjectStore
	stateStore       store.StateStore
	syllabusProvider SyllabusProvider
	generator        generation.Generator
	resolver         *syllabus.Resolver
	srsService       srs.Service
	masteryParams    *mastery.Params
	locker           *ProjectLocker
	logger           *slog.Logger
}

// NewMasteryService creates a new MasteryService.
// It returns an error if any of the required dependencies are nil.
func NewMasteryService(
	projectStore store.ProjectStore,
	stateStore store.StateStore,
	syllabusProvider SyllabusProvider,
	generator generation.Generator,
	resolver *syllabus.Resolver,
	srsService srs.Service,
	masteryParams *mastery.Params,
	locker *ProjectLocker,
	logger *slog.Logger,
) (MasteryService, error) {
	if projectStore == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "projectStore cannot be nil",
		}
	}
	if stateStore == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "stateStore cannot be nil",
		}
	}
	if syllabusProvider == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "syllabusProvider cannot be nil",
		}
	}
	if generator == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}
	if resolver == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "resolver cannot be nil",
		}
	}
	if srsService == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "srsService cannot be nil",
		}
	}
	if masteryParams == nil {
		masteryParams = mastery.NewDefaultParams()
	}
	if locker == nil {
		return nil, &MasteryServiceError{
			Operation: "create_service",
			Message:   "locker cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &masteryServiceImpl{
		projectStore:     projectStore,
		stateStore:       stateStore,
		syllabusProvider: syllabusProvider,
		generator:        generator,
		resolver:         resolver,
		srsService:       srsService,
		masteryParams:    masteryParams,
		locker:           locker,
		logger:           logger.With("component", "mastery_service"),
	}, nil
}

// GetMasteryReport builds the mastery report for a project.
func (s *masteryServiceImpl) GetMasteryReport(
	ctx context.Context,
	userID, projectID uuid.UUID,
) (*MasteryReport, error) {
	if err := s.checkOwnership(ctx, userID, projectID); err != nil {
		return nil, err
	}

	state, err := s.stateStore.LoadState(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to load project state for mastery report",
			"error", err,
			"project_id", projectID)
		return nil, NewMasteryServiceError("get_mastery_report", "failed to load project state", err)
	}

	classified := mastery.Classify(state.Ledger, state.Syllabus, s.masteryParams)
	now := time.Now().UTC()

	report := &MasteryReport{
		ProjectID:    projectID,
		Concepts:     make([]ConceptStatus, 0, len(classified.Concepts)),
		WeakConcepts: classified.Weak(),
	}

	for _, cm := range classified.Concepts {
		status := ConceptStatus{
			Concept:       cm.Concept,
			Correct:       cm.Correct,
			Total:         cm.Total,
			Ratio:         cm.Ratio,
			Level:         cm.Level,
			LowConfidence: cm.LowConfidence,
		}

		if entry, ok := state.Schedule[cm.Concept]; ok && !entry.NextReview.IsZero() {
			status.IntervalDays = entry.Interval
			status.NextReview = entry.NextReview.UTC().Format(time.DateOnly)
			status.Due = s.srsService.IsDue(entry, now)
		}

		report.Concepts = append(report.Concepts, status)
	}

	if classified.HasCorruption() {
		report.CorruptedRecords = classified.Corrupted()
		report.ResetInstruction = resetInstruction
		s.logger.Warn("mastery report contains corrupted records",
			"project_id", projectID,
			"corrupted_count", len(report.CorruptedRecords))
	}

	s.logger.Debug("built mastery report",
		"project_id", projectID,
		"concept_count", len(report.Concepts),
		"weak_count", len(report.WeakConcepts))

	return report, nil
}

// GetAnalogy returns the cached analogy for a concept, generating and storing
// it on first request. The project lock is held across the cache check, the
// generation, and the write, so concurrent requests for the same project
// produce one generation instead of racing writes.
func (s *masteryServiceImpl) GetAnalogy(
	ctx context.Context,
	userID, projectID uuid.UUID,
	concept string,
) (string, error) {
	if err := s.checkOwnership(ctx, userID, projectID); err != nil {
		return "", err
	}

	syl, err := s.syllabusProvider.EnsureSyllabus(ctx, projectID)
	if err != nil {
		return "", NewMasteryServiceError("get_analogy", "failed to ensure syllabus", err)
	}

	canonical, err := s.resolver.Resolve(concept, syl)
	if err != nil {
		s.logger.Debug("analogy requested for unresolvable concept",
			"project_id", projectID,
			"concept", concept)
		return "", NewMasteryServiceError("get_analogy", "concept not in syllabus", err)
	}

	unlock := s.locker.Lock(projectID)
	defer unlock()

	analogies, err := s.stateStore.LoadAnalogies(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to load analogy cache",
			"error", err,
			"project_id", projectID)
		return "", NewMasteryServiceError("get_analogy", "failed to load analogy cache", err)
	}

	if cached, ok := analogies[canonical]; ok {
		s.logger.Debug("analogy cache hit",
			"project_id", projectID,
			"concept", canonical)
		return cached, nil
	}

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		return "", NewMasteryServiceError("get_analogy", "failed to retrieve project", err)
	}

	analogy, err := s.generator.GenerateAnalogy(ctx, generation.AnalogyRequest{
		ProjectName: project.Name,
		Level:       project.Level,
		Concept:     canonical,
	})
	if err != nil {
		s.logger.Error("analogy generation failed",
			"error", err,
			"project_id", projectID,
			"concept", canonical)
		return "", NewMasteryServiceError("get_analogy", "failed to generate analogy", err)
	}

	if err := s.stateStore.SaveAnalogy(ctx, projectID, canonical, analogy); err != nil {
		// The generated text is still good; a failed cache write only costs
		// a regeneration on the next request.
		s.logger.Warn("failed to cache analogy",
			"error", err,
			"project_id", projectID,
			"concept", canonical)
	} else {
		s.logger.Info("analogy generated and cached",
			"project_id", projectID,
			"concept", canonical)
	}

	return analogy, nil
}

// checkOwnership verifies the project exists and belongs to the caller.
func (s *masteryServiceImpl) checkOwnership(ctx context.Context, userID, projectID uuid.UUID) error {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		s.logger.Error("failed to retrieve project",
			"error", err,
			"project_id", projectID)
		return NewMasteryServiceError("check_ownership", "failed to retrieve project", err)
	}

	if project.UserID != userID {
		s.logger.Warn("project access denied",
			"project_id", projectID,
			"owner_id", project.UserID,
			"user_id", userID)
		return ErrNotOwned
	}

	return nil
}
