package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// SQLiteStateStore implements the store.StateStore interface using the JSON
// text columns of the projects table. The syllabus, ledger, and schedule for
// a project live in one row, so the coupled ledger+schedule writes are
// single-statement UPDATEs and therefore atomic.
type SQLiteStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteStateStore creates a new SQLite implementation of the StateStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewSQLiteStateStore(db store.DBTX, logger *slog.Logger) *SQLiteStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "state_store")),
	}
}

// Ensure SQLiteStateStore implements store.StateStore interface
var _ store.StateStore = (*SQLiteStateStore)(nil)

// LoadState implements store.StateStore.LoadState
// Returns store.ErrProjectNotFound if the project does not exist.
// Returns a wrapped domain.ErrDataCorruption if any stored blob fails to
// decode; nothing is repaired or dropped on that path.
func (s *SQLiteStateStore) LoadState(ctx context.Context, projectID uuid.UUID) (*store.ProjectState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT syllabus, progress, schedule
		FROM projects
		WHERE id = ?
	`

	var syllabusRaw, progressRaw, scheduleRaw []byte
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(&syllabusRaw, &progressRaw, &scheduleRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found for state load", slog.String("project_id", projectID.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to load project state",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, MapError(err)
	}

	state := &store.ProjectState{
		ProjectID: projectID,
		Syllabus:  domain.Syllabus{},
		Ledger:    domain.Ledger{},
		Schedule:  domain.Schedule{},
	}

	if len(syllabusRaw) > 0 {
		if err := json.Unmarshal(syllabusRaw, &state.Syllabus); err != nil {
			log.Error("stored syllabus blob is not decodable",
				slog.String("project_id", projectID.String()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: syllabus blob: %v", domain.ErrDataCorruption, err)
		}
	}
	if len(progressRaw) > 0 {
		if err := json.Unmarshal(progressRaw, &state.Ledger); err != nil {
			log.Error("stored progress blob is not decodable",
				slog.String("project_id", projectID.String()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: progress blob: %v", domain.ErrDataCorruption, err)
		}
	}
	if len(scheduleRaw) > 0 {
		if err := json.Unmarshal(scheduleRaw, &state.Schedule); err != nil {
			log.Error("stored schedule blob is not decodable",
				slog.String("project_id", projectID.String()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: schedule blob: %v", domain.ErrDataCorruption, err)
		}
	}

	return state, nil
}

// SaveSyllabus implements store.StateStore.SaveSyllabus
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteStateStore) SaveSyllabus(ctx context.Context, projectID uuid.UUID, syllabus domain.Syllabus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := syllabus.Validate(); err != nil {
		log.Warn("syllabus validation failed during save",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return err
	}

	payload, err := json.Marshal(syllabus)
	if err != nil {
		return fmt.Errorf("failed to encode syllabus: %w", err)
	}

	query := `
		UPDATE projects
		SET syllabus = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, string(payload), time.Now().UTC(), projectID)
	if err != nil {
		log.Error("failed to save syllabus",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for syllabus save", slog.String("project_id", projectID.String()))
		return store.ErrProjectNotFound
	}

	log.Info("syllabus saved",
		slog.String("project_id", projectID.String()),
		slog.Int("concepts", len(syllabus)))
	return nil
}

// SaveProgress implements store.StateStore.SaveProgress
// The ledger and the schedule land in one UPDATE so a crash between the two
// can never happen.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteStateStore) SaveProgress(
	ctx context.Context,
	projectID uuid.UUID,
	ledger domain.Ledger,
	schedule domain.Schedule,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ledgerPayload, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	schedulePayload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	query := `
		UPDATE projects
		SET progress = ?, schedule = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, string(ledgerPayload), string(schedulePayload), time.Now().UTC(), projectID)
	if err != nil {
		log.Error("failed to save progress",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for progress save", slog.String("project_id", projectID.String()))
		return store.ErrProjectNotFound
	}

	log.Info("progress saved",
		slog.String("project_id", projectID.String()),
		slog.Int("ledger_concepts", len(ledger)),
		slog.Int("scheduled_concepts", len(schedule)))
	return nil
}

// ResetProgress implements store.StateStore.ResetProgress
// Clears the ledger and the schedule in one UPDATE; the syllabus column is
// untouched.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteStateStore) ResetProgress(ctx context.Context, projectID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE projects
		SET progress = '{}', schedule = '{}', updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), projectID)
	if err != nil {
		log.Error("failed to reset progress",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for progress reset", slog.String("project_id", projectID.String()))
		return store.ErrProjectNotFound
	}

	log.Info("progress reset", slog.String("project_id", projectID.String()))
	return nil
}

// LoadAnalogies implements store.StateStore.LoadAnalogies
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteStateStore) LoadAnalogies(ctx context.Context, projectID uuid.UUID) (map[string]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT analogies FROM projects WHERE id = ?`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found for analogies load", slog.String("project_id", projectID.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to load analogies",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, MapError(err)
	}

	analogies := map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &analogies); err != nil {
			log.Error("stored analogies blob is not decodable",
				slog.String("project_id", projectID.String()),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: analogies blob: %v", domain.ErrDataCorruption, err)
		}
	}

	return analogies, nil
}

// SaveAnalogy implements store.StateStore.SaveAnalogy
// Concept names can contain dots and quotes, which json_set paths cannot
// carry safely, so the whole document is rewritten. Callers serialize writes
// per project, so the read-modify-write pair does not race.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *SQLiteStateStore) SaveAnalogy(ctx context.Context, projectID uuid.UUID, concept, analogy string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if concept == "" {
		return domain.ErrEmptyConceptName
	}

	analogies, err := s.LoadAnalogies(ctx, projectID)
	if err != nil {
		return err
	}
	analogies[concept] = analogy

	payload, err := json.Marshal(analogies)
	if err != nil {
		return fmt.Errorf("failed to encode analogies: %w", err)
	}

	query := `
		UPDATE projects
		SET analogies = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, string(payload), time.Now().UTC(), projectID)
	if err != nil {
		log.Error("failed to save analogy",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("concept", concept))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		log.Debug("project not found for analogy save", slog.String("project_id", projectID.String()))
		return store.ErrProjectNotFound
	}

	log.Info("analogy saved",
		slog.String("project_id", projectID.String()),
		slog.String("concept", concept))
	return nil
}

// WithTx implements store.StateStore.WithTx
func (s *SQLiteStateStore) WithTx(tx *sql.Tx) store.StateStore {
	return &SQLiteStateStore{
		db:     tx,
		logger: s.logger,
	}
}
