package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/service/targeting"
)

// QuizHandler handles quiz round HTTP requests.
type QuizHandler struct {
	targetingService targeting.TargetingService
	logger           *slog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	targetingService targeting.TargetingService,
	logger *slog.Logger,
) *QuizHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for QuizHandler")
	}

	return &QuizHandler{
		targetingService: targetingService,
		logger:           logger.With(slog.String("component", "quiz_handler")),
	}
}

// StartRound handles POST /api/projects/{id}/quiz requests. The response
// items carry no answer key; answers and explanations come back with the
// grading result.
func (h *QuizHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	round, err := h.targetingService.StartRound(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start quiz round")
		return
	}

	log.Debug("quiz round started",
		slog.String("project_id", projectID.String()),
		slog.String("round_id", round.ID.String()),
		slog.Bool("focused", round.Focused),
		slog.Int("item_count", len(round.Items)))
	shared.RespondWithJSON(w, r, http.StatusOK, roundToResponse(round))
}

// SubmitAnswers handles POST /api/projects/{id}/quiz/answers requests. The
// answer set must cover the active round's items exactly once; grading
// persists all progress updates in one write and consumes the round.
func (h *QuizHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	result, err := h.targetingService.SubmitAnswers(r.Context(), userID, projectID, req.Answers)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to grade answers")
		return
	}

	log.Debug("quiz round graded",
		slog.String("project_id", projectID.String()),
		slog.String("round_id", result.RoundID.String()),
		slog.Int("correct", result.CorrectCount),
		slog.Int("total", result.TotalCount))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
