package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/service"
)

// MasteryHandler handles requests for a project's learning state: the
// mastery report and concept analogies.
type MasteryHandler struct {
	masteryService service.MasteryService
	logger         *slog.Logger
}

// NewMasteryHandler creates a new MasteryHandler.
func NewMasteryHandler(
	masteryService service.MasteryService,
	logger *slog.Logger,
) *MasteryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MasteryHandler")
	}

	return &MasteryHandler{
		masteryService: masteryService,
		logger:         logger.With(slog.String("component", "mastery_handler")),
	}
}

// GetMasteryReport handles GET /api/projects/{id}/mastery requests. The
// report is a pure view over stored progress; it never triggers generation
// and never repairs corrupted records.
func (h *MasteryHandler) GetMasteryReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	report, err := h.masteryService.GetMasteryReport(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build mastery report")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// GetAnalogy handles GET /api/projects/{id}/analogy?concept= requests.
// The concept label is resolved against the canonical syllabus; the analogy
// is generated on first request and served from the cache afterwards.
func (h *MasteryHandler) GetAnalogy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	concept := strings.TrimSpace(r.URL.Query().Get("concept"))
	if concept == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter 'concept' is required")
		return
	}

	analogy, err := h.masteryService.GetAnalogy(r.Context(), userID, projectID, concept)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve analogy")
		return
	}

	log.Debug("analogy served",
		slog.String("project_id", projectID.String()),
		slog.String("concept", concept))
	shared.RespondWithJSON(w, r, http.StatusOK, AnalogyResponse{
		ProjectID: projectID.String(),
		Concept:   concept,
		Analogy:   analogy,
	})
}
