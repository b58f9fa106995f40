package targeting

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
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/service"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/syllabus"
)

// Verify interface compliance at compile time
var _ TargetingService = (*targetingServiceImpl)(nil)

// defaultItemCount is the number of quiz items requested per round when the
// configuration does not say otherwise.
const defaultItemCount = 10

// SyllabusProvider yields the canonical syllabus for a project, generating
// it first when the project does not have one yet. The service.ProjectService
// satisfies this.
type SyllabusProvider interface {
	EnsureSyllabus(ctx context.Context, projectID uuid.UUID) (domain.Syllabus, error)
}

// targetingServiceImpl implements the TargetingService interface.
type targetingServiceImpl struct {
	projectStore store.ProjectStore
	stateStore   store.StateStore
	syllabi      SyllabusProvider
	generator    generation.Generator
	resolver     *syllabus.Resolver
	srsService   srs.Service
	params       *mastery.Params
	locker       *service.ProjectLocker
	itemCount    int
	rounds       *roundRegistry
	logger       *slog.Logger
}

// NewTargetingService creates a new TargetingService implementation.
//
// The locker must be the same instance the project service uses, so that
// grading writes serialize with syllabus work and progress resets on the
// same project.
func NewTargetingService(
	projectStore store.ProjectStore,
	stateStore store.StateStore,
	syllabi SyllabusProvider,
	generator generation.Generator,
	resolver *syllabus.Resolver,
	srsService srs.Service,
	params *mastery.Params,
	locker *service.ProjectLocker,
	itemCount int,
	logger *slog.Logger,
) TargetingService {
	// Validate inputs
	if projectStore == nil {
		panic("projectStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if syllabi == nil {
		panic("syllabi cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if locker == nil {
		panic("locker cannot be nil")
	}
	if params == nil {
		params = mastery.NewDefaultParams()
	}
	if itemCount <= 0 {
		itemCount = defaultItemCount
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &targetingServiceImpl{
		projectStore: projectStore,
		stateStore:   stateStore,
		syllabi:      syllabi,
		generator:    generator,
		resolver:     resolver,
		srsService:   srsService,
		params:       params,
		locker:       locker,
		itemCount:    itemCount,
		rounds:       newRoundRegistry(),
		logger:       logger.With(slog.String("component", "targeting_service")),
	}
}

// StartRound implements TargetingService.StartRound.
func (s *targetingServiceImpl) StartRound(
	ctx context.Context,
	userID uuid.UUID,
	projectID uuid.UUID,
) (*Round, error) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.ownedProject(ctx, log, userID, projectID)
	if err != nil {
		return nil, err
	}

	round := &Round{
		ID:        uuid.New(),
		ProjectID: projectID,
		State:     RoundSelecting,
		CreatedAt: time.Now().UTC(),
	}

	// A project without a syllabus gets one generated on the spot; nothing
	// can be targeted or validated without it.
	syl, err := s.syllabi.EnsureSyllabus(ctx, projectID)
	if err != nil {
		round.State = RoundFailed
		return nil, NewStartRoundError("failed to ensure syllabus", err)
	}

	state, err := s.stateStore.LoadState(ctx, projectID)
	if err != nil {
		round.State = RoundFailed
		log.Error("failed to load project state",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, NewStartRoundError("failed to load project state", err)
	}

	report := mastery.Classify(state.Ledger, syl, s.params)
	due := s.srsService.Due(state.Schedule, round.CreatedAt)

	if report.HasCorruption() {
		// Corrupted records make the mastery picture untrustworthy, so the
		// round stays general until the learner resets progress.
		round.Notices = append(round.Notices, NoticeDataCorruptionDetected)
		log.Warn("corrupted progress records found, focused targeting disabled",
			slog.String("project_id", projectID.String()),
			slog.Int("corrupted_count", len(report.Corrupted())))
	} else {
		round.TargetConcepts = targetConcepts(report.Weak(), due)
	}

	var items []domain.QuizItem
	if len(round.TargetConcepts) > 0 {
		round.State = RoundRequestingFocused
		items, err = s.requestItems(ctx, log, round, project, syl, round.TargetConcepts)
		if err != nil {
			// One fallback, never more: a focused request that fails for
			// any reason is retried as a general request, and the round
			// records that it was degraded.
			log.Warn("focused quiz request failed, falling back to general",
				slog.String("error", err.Error()),
				slog.String("project_id", projectID.String()))
			round.Notices = append(round.Notices, NoticeTargetedGenerationDegraded)
			round.State = RoundRequestingGeneral
			items, err = s.requestItems(ctx, log, round, project, syl, nil)
		} else {
			round.Focused = true
		}
	} else {
		round.State = RoundRequestingGeneral
		items, err = s.requestItems(ctx, log, round, project, syl, nil)
	}
	if err != nil {
		round.State = RoundFailed
		log.Error("quiz generation failed",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		if !errors.Is(err, generation.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
		}
		return nil, NewStartRoundError("quiz generation failed", err)
	}

	round.Items = items
	round.State = RoundReady
	s.rounds.put(round)

	log.Info("quiz round ready",
		slog.String("project_id", projectID.String()),
		slog.String("round_id", round.ID.String()),
		slog.Bool("focused", round.Focused),
		slog.Int("item_count", len(items)),
		slog.Int("notice_count", len(round.Notices)))
	return round, nil
}

// SubmitAnswers implements TargetingService.SubmitAnswers.
func (s *targetingServiceImpl) SubmitAnswers(
	ctx context.Context,
	userID uuid.UUID,
	projectID uuid.UUID,
	answers []domain.Answer,
) (*GradeResult, error) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.ownedProject(ctx, log, userID, projectID); err != nil {
		return nil, err
	}

	// Grading is a read-modify-write over the progress blobs; the project
	// lock serializes it with resets and syllabus work. Taking the lock
	// before the registry lookup also keeps a concurrent submission from
	// grading the same round twice.
	unlock := s.locker.Lock(projectID)
	defer unlock()

	round, ok := s.rounds.get(projectID)
	if !ok {
		return nil, ErrNoActiveRound
	}

	// The whole answer set is validated before anything is graded or
	// written; a partial set would leave the ledger reflecting half a round.
	byItem, err := answersByItem(round, answers)
	if err != nil {
		return nil, err
	}

	state, err := s.stateStore.LoadState(ctx, projectID)
	if err != nil {
		log.Error("failed to load project state",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, NewSubmitAnswersError("failed to load project state", err)
	}

	now := time.Now().UTC()
	result := &GradeResult{
		RoundID:    round.ID,
		ProjectID:  projectID,
		TotalCount: len(round.Items),
		Results:    make([]ItemResult, 0, len(round.Items)),
	}

	ledger := state.Ledger
	schedule := state.Schedule
	for _, item := range round.Items {
		answer := byItem[item.ID]
		correct := item.IsCorrect(answer.Selected)

		if err := ledger.RecordAttempt(item.PrimaryConcept, correct); err != nil {
			return nil, NewSubmitAnswersError("failed to record attempt", err)
		}
		entry, err := s.srsService.Review(schedule[item.PrimaryConcept], correct, answer.Confidence, now)
		if err != nil {
			return nil, NewSubmitAnswersError("failed to schedule next review", err)
		}
		schedule[item.PrimaryConcept] = entry

		if correct {
			result.CorrectCount++
		}
		result.Results = append(result.Results, ItemResult{
			ItemID:         item.ID,
			Correct:        correct,
			SelectedAnswer: answer.Selected,
			CorrectAnswer:  item.CorrectAnswer,
			PrimaryConcept: item.PrimaryConcept,
			Explanation:    item.DetailedExplanation,
		})
	}

	// One atomic write carries the ledger and the schedule together. If it
	// fails nothing was persisted and the round stays active, so the same
	// answers can be resubmitted.
	if err := s.stateStore.SaveProgress(ctx, projectID, ledger, schedule); err != nil {
		log.Error("failed to persist graded progress",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("round_id", round.ID.String()))
		return nil, NewSubmitAnswersError("failed to persist graded progress", err)
	}

	// The graded round is consumed.
	s.rounds.remove(projectID, round.ID)

	log.Info("quiz round graded",
		slog.String("project_id", projectID.String()),
		slog.String("round_id", round.ID.String()),
		slog.Int("correct", result.CorrectCount),
		slog.Int("total", result.TotalCount))
	return result, nil
}

// ownedProject loads the project and verifies the caller owns it.
func (s *targetingServiceImpl) ownedProject(
	ctx context.Context,
	log *slog.Logger,
	userID uuid.UUID,
	projectID uuid.UUID,
) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, service.ErrProjectNotFound
		}
		log.Error("failed to retrieve project",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, fmt.Errorf("failed to retrieve project: %w", err)
	}
	if project.UserID != userID {
		log.Warn("project access denied",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return nil, service.ErrNotOwned
	}
	return project, nil
}

// requestItems asks the generator for a quiz and validates the generated
// items. A nil focus list requests a general quiz over the whole syllabus.
func (s *targetingServiceImpl) requestItems(
	ctx context.Context,
	log *slog.Logger,
	round *Round,
	project *domain.Project,
	syl domain.Syllabus,
	focus []string,
) ([]domain.QuizItem, error) {
	items, err := s.generator.GenerateQuiz(ctx, generation.QuizRequest{
		ProjectName:   project.Name,
		Level:         project.Level,
		Syllabus:      syl,
		FocusConcepts: focus,
		ItemCount:     s.itemCount,
	})
	if err != nil {
		return nil, err
	}

	round.State = RoundValidating
	valid := s.validItems(log, items, syl)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no generated item maps to a syllabus concept",
			generation.ErrInvalidResponse)
	}
	return valid, nil
}

// validItems keeps the items whose primary concept resolves to a syllabus
// entry, rewriting each kept concept to its canonical spelling. An item the
// resolver cannot place would be graded into the ledger under a name the
// syllabus does not know, so it is dropped instead.
func (s *targetingServiceImpl) validItems(
	log *slog.Logger,
	items []domain.QuizItem,
	syl domain.Syllabus,
) []domain.QuizItem {
	valid := make([]domain.QuizItem, 0, len(items))
	for _, item := range items {
		canonical, err := s.resolver.Resolve(item.PrimaryConcept, syl)
		if err != nil {
			log.Warn("dropping quiz item with unresolvable concept",
				slog.Int("item_id", item.ID),
				slog.String("primary_concept", item.PrimaryConcept))
			continue
		}
		item.PrimaryConcept = canonical
		valid = append(valid, item)
	}
	return valid
}

// targetConcepts merges the weak and due concept lists into one focused
// target list: weak concepts first, then concepts that are merely due,
// without duplicates. Both inputs arrive sorted, so the result is stable.
func targetConcepts(weak, due []string) []string {
	targets := make([]string, 0, len(weak)+len(due))
	seen := make(map[string]struct{}, len(weak)+len(due))
	for _, lists := range [][]string{weak, due} {
		for _, concept := range lists {
			if _, ok := seen[concept]; ok {
				continue
			}
			seen[concept] = struct{}{}
			targets = append(targets, concept)
		}
	}
	return targets
}

// answersByItem checks that the answers cover the round's items exactly once
// each and indexes them by item ID.
func answersByItem(round *Round, answers []domain.Answer) (map[int]domain.Answer, error) {
	if len(answers) != len(round.Items) {
		return nil, fmt.Errorf("%w: got %d answers for %d items",
			ErrIncompleteAnswers, len(answers), len(round.Items))
	}

	known := make(map[int]bool, len(round.Items))
	for _, item := range round.Items {
		known[item.ID] = false
	}

	byItem := make(map[int]domain.Answer, len(answers))
	for _, answer := range answers {
		if err := answer.Validate(); err != nil {
			return nil, err
		}
		answered, ok := known[answer.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not part of the round",
				ErrIncompleteAnswers, answer.ItemID)
		}
		if answered {
			return nil, fmt.Errorf("%w: item %d answered twice",
				ErrIncompleteAnswers, answer.ItemID)
		}
		known[answer.ItemID] = true
		byItem[answer.ItemID] = answer
	}
	return byItem, nil
}
