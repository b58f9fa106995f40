package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/service/targeting"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// CreateProjectRequest defines the payload for creating a study project.
type CreateProjectRequest struct {
	Name       string `json:"name"        validate:"required,max=200"`
	Level      string `json:"level"       validate:"omitempty,oneof=beginner intermediate advanced"`
	Notes      string `json:"notes"       validate:"max=2000"`
	SourceText string `json:"source_text" validate:"required,min=1"`
}

// ProjectResponse represents the response data for a project.
type ProjectResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Level          string    `json:"level,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	SyllabusStatus string    `json:"syllabus_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SyllabusResponse carries a project's canonical concept list.
type SyllabusResponse struct {
	ProjectID string   `json:"project_id"`
	Concepts  []string `json:"concepts"`
}

// QuizItemView is the client-facing shape of one quiz item. The correct
// answer and the explanation are held back until the round is graded.
type QuizItemView struct {
	ID             int      `json:"id"`
	Type           string   `json:"type"`
	QuestionText   string   `json:"question_text"`
	Options        []string `json:"options"`
	PrimaryConcept string   `json:"primary_concept"`
}

// RoundResponse represents a started quiz round.
type RoundResponse struct {
	RoundID        string         `json:"round_id"`
	ProjectID      string         `json:"project_id"`
	State          string         `json:"state"`
	Focused        bool           `json:"focused"`
	TargetConcepts []string       `json:"target_concepts,omitempty"`
	Notices        []string       `json:"notices,omitempty"`
	Items          []QuizItemView `json:"items"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SubmitAnswersRequest defines the payload for grading a quiz round.
// Each answer references a round item by ID and carries the learner's
// selection plus a confidence level.
type SubmitAnswersRequest struct {
	Answers []domain.Answer `json:"answers" validate:"required,min=1"`
}

// AnalogyResponse carries the generated or cached analogy for one concept.
type AnalogyResponse struct {
	ProjectID string `json:"project_id"`
	Concept   string `json:"concept"`
	Analogy   string `json:"analogy"`
}

// projectToResponse converts a domain.Project to a ProjectResponse.
func projectToResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:             project.ID.String(),
		Name:           project.Name,
		Level:          project.Level,
		Notes:          project.Notes,
		SyllabusStatus: string(project.SyllabusStatus),
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

// roundToResponse converts a targeting.Round to a RoundResponse, stripping
// the answer key from every item.
func roundToResponse(round *targeting.Round) RoundResponse {
	items := make([]QuizItemView, 0, len(round.Items))
	for _, item := range round.Items {
		items = append(items, QuizItemView{
			ID:             item.ID,
			Type:           string(item.Type),
			QuestionText:   item.QuestionText,
			Options:        item.Options,
			PrimaryConcept: item.PrimaryConcept,
		})
	}

	notices := make([]string, 0, len(round.Notices))
	for _, notice := range round.Notices {
		notices = append(notices, string(notice))
	}

	return RoundResponse{
		RoundID:        round.ID.String(),
		ProjectID:      round.ProjectID.String(),
		State:          string(round.State),
		Focused:        round.Focused,
		TargetConcepts: round.TargetConcepts,
		Notices:        notices,
		Items:          items,
		CreatedAt:      round.CreatedAt,
	}
}
