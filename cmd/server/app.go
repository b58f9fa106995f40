package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain/mastery"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/phrazzld/drill-api/internal/platform/gemini"
	"github.com/phrazzld/drill-api/internal/platform/openai"
	"github.com/phrazzld/drill-api/internal/platform/postgres"
	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/phrazzld/drill-api/internal/service"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/targeting"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/syllabus"
	"github.com/phrazzld/drill-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	projectStore store.ProjectStore
	stateStore   store.StateStore
	taskStore    task.TaskStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	generator        generation.Generator
	srsService       srs.Service
	projectService   service.ProjectService
	masteryService   service.MasteryService
	targetingService targeting.TargetingService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores for the configured database backend
	switch cfg.Database.Driver {
	case "sqlite":
		app.userStore = sqlite.NewSQLiteUserStore(db, cfg.Auth.BcryptCost, logger)
		app.projectStore = sqlite.NewSQLiteProjectStore(db, logger)
		app.stateStore = sqlite.NewSQLiteStateStore(db, logger)
		app.taskStore = sqlite.NewSQLiteTaskStore(db)
	case "postgres":
		app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
		app.projectStore = postgres.NewPostgresProjectStore(db, logger)
		app.stateStore = postgres.NewPostgresStateStore(db, logger)
		app.taskStore = postgres.NewPostgresTaskStore(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	// Create the LLM generator for the configured provider
	app.generator, err = newGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", "provider", cfg.LLM.Provider)

	// Create the task runner. It is started last, after the recoverer is
	// registered, because Start replays unfinished tasks from the store.
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize SRS service
	app.srsService = srs.NewDefaultService()

	// A single locker serializes syllabus work, grading writes, and
	// progress resets on the same project across all three services.
	locker := service.NewProjectLocker()

	masteryParams := &mastery.Params{
		Threshold:     cfg.Engine.MasteryThreshold,
		MinSampleSize: cfg.Engine.MinSampleSize,
	}
	resolver := syllabus.NewResolver()

	// Initialize project service
	app.projectService, err = service.NewProjectService(
		app.projectStore,
		app.stateStore,
		app.generator,
		app.eventEmitter,
		locker,
		app.db,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}

	// Initialize mastery service
	app.masteryService, err = service.NewMasteryService(
		app.projectStore,
		app.stateStore,
		app.projectService,
		app.generator,
		resolver,
		app.srsService,
		masteryParams,
		locker,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mastery service: %w", err)
	}

	// Initialize targeting service
	app.targetingService = targeting.NewTargetingService(
		app.projectStore,
		app.stateStore,
		app.projectService,
		app.generator,
		resolver,
		app.srsService,
		masteryParams,
		locker,
		cfg.Engine.QuizItemCount,
		logger,
	)

	// Create the task factory and wire it into both ends of the task
	// pipeline: recovery of stored tasks at startup and creation of new
	// tasks from emitted events.
	taskFactory := task.NewSyllabusGenerationTaskFactory(app.projectService, logger)
	app.taskRunner.RegisterRecoverer(task.TaskTypeSyllabusGeneration, taskFactory)

	taskFactoryHandler := task.NewTaskFactoryEventHandler(
		taskFactory,
		app.taskRunner,
		logger,
	)
	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	// Start the task runner now that the recoverer is in place
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// newGenerator creates the quiz and syllabus generator for the configured
// LLM provider.
func newGenerator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (generation.Generator, error) {
	generatorLogger := logger.With("component", "llm_generator")

	switch cfg.LLM.Provider {
	case "gemini":
		return gemini.NewGeminiGenerator(ctx, generatorLogger, cfg.LLM)
	case "openai":
		return openai.NewOpenAIGenerator(generatorLogger, cfg.LLM)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
