package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// SQLiteProjectStore implements the store.ProjectStore interface
// using a SQLite database as the storage backend.
type SQLiteProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteProjectStore creates a new SQLite implementation of the ProjectStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteProjectStore(db store.DBTX, logger *slog.Logger) *SQLiteProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure SQLiteProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*SQLiteProjectStore)(nil)

// Create implements store.ProjectStore.Create
// Returns store.ErrProjectNameExists if the user already has a project with the same name.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *SQLiteProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (id, user_id, name, level, notes, source_text, syllabus_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.UserID,
		project.Name,
		project.Level,
		project.Notes,
		project.SourceText,
		project.SyllabusStatus,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate project name during creation",
				slog.String("project_id", project.ID.String()),
				slog.String("user_id", project.UserID.String()))
			return MapUniqueViolation(err, "", store.ErrProjectNameExists)
		}

		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()),
			slog.String("user_id", project.UserID.String()))
		return MapError(err)
	}

	log.Info("project created successfully",
		slog.String("project_id", project.ID.String()),
		slog.String("user_id", project.UserID.String()))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, level, notes, source_text, syllabus_status, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	var project domain.Project
	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Level,
		&project.Notes,
		&project.SourceText,
		&status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.String("project_id", id.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project by ID",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return nil, MapError(err)
	}

	project.SyllabusStatus = domain.SyllabusStatus(status)

	return &project, nil
}

// ListByUser implements store.ProjectStore.ListByUser
// Returns an empty slice when the user has no projects.
func (s *SQLiteProjectStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, level, notes, source_text, syllabus_status, created_at, updated_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query projects by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var projects []*domain.Project
	for rows.Next() {
		var project domain.Project
		var status string

		err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Name,
			&project.Level,
			&project.Notes,
			&project.SourceText,
			&status,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan project row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		project.SyllabusStatus = domain.SyllabusStatus(status)
		projects = append(projects, &project)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if projects == nil {
		projects = []*domain.Project{}
	}

	return projects, nil
}

// UpdateSyllabusStatus implements store.ProjectStore.UpdateSyllabusStatus
// Returns store.ErrProjectNotFound if the project does not exist.
// Returns domain validation errors if the status is invalid.
func (s *SQLiteProjectStore) UpdateSyllabusStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SyllabusStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		log.Warn("invalid syllabus status",
			slog.String("project_id", id.String()),
			slog.String("status", string(status)))
		return domain.ErrInvalidSyllabusStatus
	}

	query := `
		UPDATE projects
		SET syllabus_status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update syllabus status",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for status update", slog.String("project_id", id.String()))
		return store.ErrProjectNotFound
	}

	log.Info("syllabus status updated",
		slog.String("project_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.ProjectStore.Delete
// The projects row carries all per-project state, so deleting it removes the
// syllabus, ledger, schedule, and analogies with it.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM projects WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete project",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for delete", slog.String("project_id", id.String()))
		return store.ErrProjectNotFound
	}

	log.Info("project deleted successfully", slog.String("project_id", id.String()))
	return nil
}

// WithTx implements store.ProjectStore.WithTx
func (s *SQLiteProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &SQLiteProjectStore{
		db:     tx,
		logger: s.logger,
	}
}
