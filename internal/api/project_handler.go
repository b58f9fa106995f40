package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/service"
)

// ProjectHandler handles project-related HTTP requests.
type ProjectHandler struct {
	projectService service.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(
	projectService service.ProjectService,
	logger *slog.Logger,
) *ProjectHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProjectHandler")
	}

	return &ProjectHandler{
		projectService: projectService,
		logger:         logger.With(slog.String("component", "project_handler")),
	}
}

// CreateProject handles POST /api/projects requests. The project is returned
// immediately with syllabus status pending; syllabus generation runs as a
// background task.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !parseAndValidateRequest(w, r, &req, log) {
		return
	}

	project, err := h.projectService.CreateProject(
		r.Context(), userID, req.Name, req.Level, req.Notes, req.SourceText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}

	log.Debug("project created",
		slog.String("user_id", userID.String()),
		slog.String("project_id", project.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(project))
}

// ListProjects handles GET /api/projects requests.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list projects")
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, projectToResponse(project))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetProject handles GET /api/projects/{id} requests.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve project")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(project))
}

// DeleteProject handles DELETE /api/projects/{id} requests. The project's
// learning state goes with it.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), userID, projectID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete project")
		return
	}

	log.Debug("project deleted",
		slog.String("user_id", userID.String()),
		slog.String("project_id", projectID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetSyllabus handles GET /api/projects/{id}/syllabus requests. A project
// whose background generation has not landed yet gets its syllabus generated
// synchronously here.
func (h *ProjectHandler) GetSyllabus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	syl, err := h.projectService.GetSyllabus(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve syllabus")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SyllabusResponse{
		ProjectID: projectID.String(),
		Concepts:  syl,
	})
}

// RegenerateSyllabus handles POST /api/projects/{id}/syllabus/regenerate
// requests. Regeneration is refused with a conflict while graded attempts
// exist; progress must be reset first.
func (h *ProjectHandler) RegenerateSyllabus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	syl, err := h.projectService.RegenerateSyllabus(r.Context(), userID, projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to regenerate syllabus")
		return
	}

	log.Debug("syllabus regenerated",
		slog.String("project_id", projectID.String()),
		slog.Int("concept_count", len(syl)))
	shared.RespondWithJSON(w, r, http.StatusOK, SyllabusResponse{
		ProjectID: projectID.String(),
		Concepts:  syl,
	})
}

// ResetProgress handles POST /api/projects/{id}/reset requests. The attempt
// ledger and the review schedule are cleared together; the syllabus stays.
func (h *ProjectHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, projectID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.projectService.ResetProgress(r.Context(), userID, projectID); err != nil {
		HandleAPIError(w, r, err, "Failed to reset progress")
		return
	}

	log.Debug("progress reset",
		slog.String("user_id", userID.String()),
		slog.String("project_id", projectID.String()))
	w.WriteHeader(http.StatusNoContent)
}
