package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SyllabusStatus represents the lifecycle state of a project's syllabus
// generation.
type SyllabusStatus string

// Possible syllabus status values
const (
	SyllabusStatusPending    SyllabusStatus = "pending"
	SyllabusStatusProcessing SyllabusStatus = "processing"
	SyllabusStatusReady      SyllabusStatus = "ready"
	SyllabusStatusFailed     SyllabusStatus = "failed"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID        = errors.New("project ID cannot be empty")
	ErrEmptyProjectUserID    = errors.New("project user ID cannot be empty")
	ErrEmptyProjectName      = errors.New("project name cannot be empty")
	ErrInvalidSyllabusStatus = errors.New("invalid syllabus status")
)

// Project is a subject a learner is studying. It holds the learner-supplied
// framing (name, level, notes, optional source text) and tracks whether its
// syllabus has been generated yet. All mastery state is keyed under the
// project and lives or dies with it.
type Project struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	Name           string         `json:"name"`
	Level          string         `json:"level,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	SourceText     string         `json:"source_text,omitempty"`
	SyllabusStatus SyllabusStatus `json:"syllabus_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewProject creates a new Project owned by the given user. The syllabus
// status starts as pending; generation happens asynchronously after the
// project is persisted.
// Returns an error if validation fails.
func NewProject(userID uuid.UUID, name, level, notes, sourceText string) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           strings.TrimSpace(name),
		Level:          strings.TrimSpace(level),
		Notes:          notes,
		SourceText:     sourceText,
		SyllabusStatus: SyllabusStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
// Returns an error if any field fails validation.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.UserID == uuid.Nil {
		return ErrEmptyProjectUserID
	}

	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProjectName
	}

	if !p.SyllabusStatus.IsValid() {
		return ErrInvalidSyllabusStatus
	}

	return nil
}

// UpdateSyllabusStatus updates the project's syllabus status and the
// UpdatedAt timestamp. Returns an error if the new status is invalid.
func (p *Project) UpdateSyllabusStatus(status SyllabusStatus) error {
	if !status.IsValid() {
		return ErrInvalidSyllabusStatus
	}

	p.SyllabusStatus = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid checks if the status is one of the defined SyllabusStatus values.
func (s SyllabusStatus) IsValid() bool {
	switch s {
	case SyllabusStatusPending, SyllabusStatusProcessing,
		SyllabusStatusReady, SyllabusStatusFailed:
		return true
	default:
		return false
	}
}
