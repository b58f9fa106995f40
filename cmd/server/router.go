package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/drill-api/internal/api"
	apiMiddleware "github.com/phrazzld/drill-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		&app.config.Auth,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	projectHandler := api.NewProjectHandler(app.projectService, app.logger)
	quizHandler := api.NewQuizHandler(app.targetingService, app.logger)
	masteryHandler := api.NewMasteryHandler(app.masteryService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.CreateProject)
				r.Get("/", projectHandler.ListProjects)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.GetProject)
					r.Delete("/", projectHandler.DeleteProject)

					// Syllabus endpoints
					r.Get("/syllabus", projectHandler.GetSyllabus)
					r.Post("/syllabus/regenerate", projectHandler.RegenerateSyllabus)

					// Mastery endpoints
					r.Get("/mastery", masteryHandler.GetMasteryReport)
					r.Get("/analogy", masteryHandler.GetAnalogy)

					// Quiz round endpoints
					r.Post("/quiz", quizHandler.StartRound)
					r.Post("/quiz/answers", quizHandler.SubmitAnswers)

					// Progress reset
					r.Post("/reset", projectHandler.ResetProgress)
				})
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
