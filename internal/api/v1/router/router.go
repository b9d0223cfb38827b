package router

import (
	"net/http"

	"studyflow/internal/api/v1/handler"
	"studyflow/internal/bootstrap"
	"studyflow/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// New builds the HTTP handler for every /api route.
func New(c *bootstrap.Container) http.Handler {
	logger := c.Logger
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", c.Config.Environment).Str("store", c.Store.Kind).Msg("App environment loaded")

	healthHandler := handler.NewHealthHandler(c.Health)
	paddleHandler := handler.NewPaddleHandler(c.Paddle, logger)
	userHandler := handler.NewUserHandler(c.Users, c.Subscriptions, logger)
	documentHandler := handler.NewDocumentHandler(c.Documents, c.MaxUploadBytes(), logger)
	flashcardHandler := handler.NewFlashcardHandler(c.Flashcards, c.Validate, logger)
	studySessionHandler := handler.NewStudySessionHandler(c.StudySessions, c.Validate, logger)
	storyHandler := handler.NewStoryHandler(c.Stories, c.Audio, logger)

	authMiddleware := middleware.AuthMiddleware(middleware.AuthOptions{
		Verifier:  c.Verifier,
		DevBypass: c.Config.DevBypassEnabled(),
		Profiles:  c.Users,
	}, logger)
	storyLimit := middleware.RateLimit(c.Limiter, "story", logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   c.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	healthHandler.RegisterRoutes(r)
	paddleHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		userHandler.RegisterRoutes(r)
		documentHandler.RegisterRoutes(r)
		flashcardHandler.RegisterRoutes(r)
		studySessionHandler.RegisterRoutes(r)
		storyHandler.RegisterRoutes(r, storyLimit)
	})

	return r
}
