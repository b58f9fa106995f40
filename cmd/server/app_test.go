package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/platform/gemini"
	"github.com/phrazzld/drill-api/internal/platform/openai"
	"github.com/phrazzld/drill-api/internal/testdb"
)

// testAppConfig returns a config suitable for constructing the application
// against an in-memory SQLite database. The LLM API key is fake; client
// construction does not contact the provider.
func testAppConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			URL:    ":memory:",
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-jwt-secret-thats-at-least-32-chars",
			TokenLifetimeMinutes: 60,
			BcryptCost:           4,
		},
		LLM: config.LLMConfig{
			Provider:              "gemini",
			GeminiAPIKey:          "test-api-key",
			ModelName:             "gemini-2.0-flash",
			RequestTimeoutSeconds: 30,
			Temperature:           0.7,
		},
		Engine: config.EngineConfig{
			MasteryThreshold: 0.80,
			MinSampleSize:    3,
			QuizItemCount:    10,
		},
		Task: config.TaskConfig{
			WorkerCount:         1,
			QueueSize:           10,
			StuckTaskAgeMinutes: 30,
		},
	}
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApplication(t *testing.T) {
	db := testdb.New(t)
	cfg := testAppConfig()

	app, err := newApplication(context.Background(), cfg, newDiscardLogger(), db)
	require.NoError(t, err)
	require.NotNil(t, app)

	// Stop the task runner; the database is closed by the testdb cleanup.
	defer app.taskRunner.Stop()

	assert.NotNil(t, app.userStore)
	assert.NotNil(t, app.projectStore)
	assert.NotNil(t, app.stateStore)
	assert.NotNil(t, app.taskStore)
	assert.NotNil(t, app.jwtService)
	assert.NotNil(t, app.passwordVerifier)
	assert.NotNil(t, app.generator)
	assert.NotNil(t, app.srsService)
	assert.NotNil(t, app.projectService)
	assert.NotNil(t, app.masteryService)
	assert.NotNil(t, app.targetingService)
	assert.NotNil(t, app.eventEmitter)
	assert.NotNil(t, app.taskRunner)
}

func TestNewApplicationUnsupportedDriver(t *testing.T) {
	db := testdb.New(t)
	cfg := testAppConfig()
	cfg.Database.Driver = "mysql"

	app, err := newApplication(context.Background(), cfg, newDiscardLogger(), db)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewApplicationUnsupportedProvider(t *testing.T) {
	db := testdb.New(t)
	cfg := testAppConfig()
	cfg.LLM.Provider = "anthropic"

	app, err := newApplication(context.Background(), cfg, newDiscardLogger(), db)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "failed to initialize LLM generator")
}

func TestNewApplicationInvalidJWTSecret(t *testing.T) {
	db := testdb.New(t)
	cfg := testAppConfig()
	cfg.Auth.JWTSecret = "too-short"

	app, err := newApplication(context.Background(), cfg, newDiscardLogger(), db)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "failed to initialize JWT service")
}

func TestNewGenerator(t *testing.T) {
	logger := newDiscardLogger()

	t.Run("gemini provider", func(t *testing.T) {
		cfg := testAppConfig()

		gen, err := newGenerator(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &gemini.GeminiGenerator{}, gen)
	})

	t.Run("openai provider", func(t *testing.T) {
		cfg := testAppConfig()
		cfg.LLM.Provider = "openai"
		cfg.LLM.OpenAIAPIKey = "test-api-key"

		gen, err := newGenerator(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &openai.OpenAIGenerator{}, gen)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := testAppConfig()
		cfg.LLM.Provider = "cohere"

		gen, err := newGenerator(context.Background(), cfg, logger)
		require.Error(t, err)
		assert.Nil(t, gen)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
	})
}
