package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scribe-go-api/internal/config"
	"github.com/noah-isme/scribe-go-api/internal/handler"
	"github.com/noah-isme/scribe-go-api/internal/middleware"
	"github.com/noah-isme/scribe-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DocumentHandler   *handler.DocumentHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	EvaluationHandler *handler.EvaluationHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.DocumentHandler != nil {
		documents := app.Group("/api/v1/documents", jwtMiddleware)
		// Analysis hits an external oracle, so it gets a tighter budget.
		documents.Use("/:id/analysis", middleware.RateLimit("analysis", 10, time.Minute))
		deps.DocumentHandler.Register(documents)
	}

	if deps.AssignmentHandler != nil {
		assignments := app.Group("/api/v1/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v1/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.EvaluationHandler != nil {
		results := app.Group("/api/v1/results", jwtMiddleware)
		deps.EvaluationHandler.Register(results)
	}
}
