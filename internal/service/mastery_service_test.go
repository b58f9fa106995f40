package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/mastery"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/phrazzld/drill-api/internal/service"
	"github.com/phrazzld/drill-api/internal/syllabus"
)

// masteryServiceFixture layers a MasteryService over the project fixture.
// The project service doubles as the syllabus provider and both share one
// locker, as they do in the composed application.
type masteryServiceFixture struct {
	*projectServiceFixture
	mastery service.MasteryService
}

func newMasteryServiceFixture(t *testing.T) *masteryServiceFixture {
	t.Helper()

	base := newProjectServiceFixture(t)

	svc, err := service.NewMasteryService(
		base.projects, base.state, base.svc, base.generator,
		syllabus.NewResolver(), srs.NewDefaultService(),
		mastery.NewDefaultParams(), base.locker, slog.Default(),
	)
	require.NoError(t, err)

	return &masteryServiceFixture{
		projectServiceFixture: base,
		mastery:               svc,
	}
}

func TestNewMasteryService(t *testing.T) {
	fix := newProjectServiceFixture(t)

	_, err := service.NewMasteryService(
		nil, fix.state, fix.svc, fix.generator,
		syllabus.NewResolver(), srs.NewDefaultService(),
		mastery.NewDefaultParams(), fix.locker, nil,
	)
	assert.Error(t, err, "nil project store should be rejected")

	_, err = service.NewMasteryService(
		fix.projects, fix.state, fix.svc, fix.generator,
		nil, srs.NewDefaultService(),
		mastery.NewDefaultParams(), fix.locker, nil,
	)
	assert.Error(t, err, "nil resolver should be rejected")

	svc, err := service.NewMasteryService(
		fix.projects, fix.state, fix.svc, fix.generator,
		syllabus.NewResolver(), srs.NewDefaultService(),
		nil, fix.locker, nil,
	)
	require.NoError(t, err, "nil params should fall back to defaults")
	assert.NotNil(t, svc)
}

func TestMasteryService_GetMasteryReport(t *testing.T) {
	ctx := context.Background()

	t.Run("merges classification with review schedule", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		today := domain.DateOnly(time.Now().UTC())
		yesterday := today.AddDate(0, 0, -1)
		nextWeek := today.AddDate(0, 0, 7)

		require.NoError(t, fix.state.SaveSyllabus(ctx, project.ID,
			domain.Syllabus{"Recursion", "Closures", "Channels"}))
		require.NoError(t, fix.state.SaveProgress(ctx, project.ID,
			domain.Ledger{
				"Recursion":     {Correct: 1, Total: 4},
				"Closures":      {Correct: 5, Total: 5},
				"Stale Concept": {Correct: 2, Total: 2},
			},
			domain.Schedule{
				"Recursion": {Interval: 1, NextReview: yesterday},
				"Closures":  {Interval: 5, NextReview: nextWeek},
			},
		))

		report, err := fix.mastery.GetMasteryReport(ctx, fix.userID, project.ID)
		require.NoError(t, err)

		assert.Equal(t, project.ID, report.ProjectID)
		assert.Equal(t, []string{"Recursion"}, report.WeakConcepts)
		assert.Empty(t, report.CorruptedRecords)
		assert.Empty(t, report.ResetInstruction)

		// Syllabus concepts come first in syllabus order, ledger extras after.
		require.Len(t, report.Concepts, 4)
		names := make([]string, 0, len(report.Concepts))
		for _, c := range report.Concepts {
			names = append(names, c.Concept)
		}
		assert.Equal(t, []string{"Recursion", "Closures", "Channels", "Stale Concept"}, names)

		recursion := report.Concepts[0]
		assert.Equal(t, mastery.LevelWeak, recursion.Level)
		assert.InDelta(t, 0.25, recursion.Ratio, 1e-9)
		assert.False(t, recursion.LowConfidence)
		assert.Equal(t, 1, recursion.IntervalDays)
		assert.Equal(t, yesterday.Format(time.DateOnly), recursion.NextReview)
		assert.True(t, recursion.Due)

		closures := report.Concepts[1]
		assert.Equal(t, mastery.LevelStrong, closures.Level)
		assert.False(t, closures.Due)
		assert.Equal(t, nextWeek.Format(time.DateOnly), closures.NextReview)

		channels := report.Concepts[2]
		assert.Equal(t, mastery.LevelUntested, channels.Level)
		assert.Empty(t, channels.NextReview)
		assert.False(t, channels.Due)

		stale := report.Concepts[3]
		assert.Equal(t, mastery.LevelStrong, stale.Level)
		assert.True(t, stale.LowConfidence, "two attempts are below the sample floor")
	})

	t.Run("fresh project yields an empty report without generating", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		report, err := fix.mastery.GetMasteryReport(ctx, fix.userID, project.ID)
		require.NoError(t, err)
		assert.Empty(t, report.Concepts)
		assert.Empty(t, report.WeakConcepts)

		// The report is a read-only view; a missing syllabus stays missing.
		fix.generator.AssertNotCalled(t, "GenerateSyllabus", mock.Anything, mock.Anything)
	})

	t.Run("corrupted records carry the reset instruction", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		overlong := strings.Repeat("x", 60)
		require.NoError(t, fix.state.SaveSyllabus(ctx, project.ID,
			domain.Syllabus{"Recursion"}))
		require.NoError(t, fix.state.SaveProgress(ctx, project.ID,
			domain.Ledger{
				"Recursion": {Correct: 0, Total: 3},
				overlong:    {Correct: 1, Total: 1},
			},
			domain.Schedule{},
		))

		report, err := fix.mastery.GetMasteryReport(ctx, fix.userID, project.ID)
		require.NoError(t, err)

		assert.Equal(t, []string{overlong}, report.CorruptedRecords)
		assert.NotEmpty(t, report.ResetInstruction)
		assert.Contains(t, report.ResetInstruction, "reset")

		// The corrupted record stays visible in the concept list and the
		// healthy weak concept is still reported.
		assert.Equal(t, []string{"Recursion"}, report.WeakConcepts)
		last := report.Concepts[len(report.Concepts)-1]
		assert.Equal(t, overlong, last.Concept)
		assert.Equal(t, mastery.LevelCorrupted, last.Level)
	})

	t.Run("undecodable progress blob surfaces as data corruption", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		_, err := fix.db.ExecContext(ctx,
			"UPDATE projects SET progress = '{broken' WHERE id = ?", project.ID.String())
		require.NoError(t, err)

		_, err = fix.mastery.GetMasteryReport(ctx, fix.userID, project.ID)
		assert.ErrorIs(t, err, domain.ErrDataCorruption)
	})

	t.Run("ownership is enforced", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		_, err := fix.mastery.GetMasteryReport(ctx, uuid.New(), project.ID)
		assert.ErrorIs(t, err, service.ErrNotOwned)

		_, err = fix.mastery.GetMasteryReport(ctx, fix.userID, uuid.New())
		assert.ErrorIs(t, err, service.ErrProjectNotFound)
	})
}

func TestMasteryService_GetAnalogy(t *testing.T) {
	ctx := context.Background()

	t.Run("generates on miss and serves the cache afterwards", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")
		require.NoError(t, fix.state.SaveSyllabus(ctx, project.ID,
			domain.Syllabus{"Recursion", "Closures"}))

		const analogy = "A function calling itself is a set of nesting dolls, each opening the next."
		fix.generator.On("GenerateAnalogy", mock.Anything, mock.MatchedBy(
			func(req generation.AnalogyRequest) bool {
				return req.Concept == "Recursion" && req.ProjectName == "Go Internals"
			},
		)).Return(analogy, nil).Once()

		// The raw label is canonicalized before the cache is consulted.
		got, err := fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "recursion")
		require.NoError(t, err)
		assert.Equal(t, analogy, got)

		cached, err := fix.state.LoadAnalogies(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, analogy, cached["Recursion"])

		// A differently spelled request hits the same cache entry.
		got, err = fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "  RECURSION ")
		require.NoError(t, err)
		assert.Equal(t, analogy, got)
		fix.generator.AssertNumberOfCalls(t, "GenerateAnalogy", 1)
	})

	t.Run("unresolvable concept is rejected", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")
		require.NoError(t, fix.state.SaveSyllabus(ctx, project.ID,
			domain.Syllabus{"Recursion", "Closures"}))

		_, err := fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "Quantum Elephant Biology")
		assert.ErrorIs(t, err, syllabus.ErrNoMatch)
		fix.generator.AssertNotCalled(t, "GenerateAnalogy", mock.Anything, mock.Anything)
	})

	t.Run("generation failure is reported", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")
		require.NoError(t, fix.state.SaveSyllabus(ctx, project.ID,
			domain.Syllabus{"Recursion"}))

		fix.generator.On("GenerateAnalogy", mock.Anything, mock.Anything).
			Return("", fmt.Errorf("%w: provider outage", generation.ErrGenerationFailed)).Once()

		_, err := fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "Recursion")
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)

		cached, err := fix.state.LoadAnalogies(ctx, project.ID)
		require.NoError(t, err)
		assert.Empty(t, cached)
	})

	t.Run("missing syllabus triggers self-heal before resolving", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		fix.generator.On("GenerateSyllabus", mock.Anything, mock.Anything).
			Return(domain.Syllabus{"Recursion"}, nil).Once()
		fix.generator.On("GenerateAnalogy", mock.Anything, mock.Anything).
			Return("nesting dolls", nil).Once()

		got, err := fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "Recursion")
		require.NoError(t, err)
		assert.Equal(t, "nesting dolls", got)
	})

	t.Run("syllabus generation failure surfaces as unavailable", func(t *testing.T) {
		fix := newMasteryServiceFixture(t)
		project := fix.createProject(t, "Go Internals")

		fix.generator.On("GenerateSyllabus", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: model timed out", generation.ErrGenerationFailed)).Once()

		_, err := fix.mastery.GetAnalogy(ctx, fix.userID, project.ID, "Recursion")
		assert.ErrorIs(t, err, syllabus.ErrSyllabusUnavailable)
	})
}
