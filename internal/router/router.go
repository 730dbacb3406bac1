package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/scholartrack-api/internal/config"
	"github.com/noah-isme/scholartrack-api/internal/handler"
	"github.com/noah-isme/scholartrack-api/internal/middleware"
	"github.com/noah-isme/scholartrack-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RequirementSetHandler *handler.RequirementSetHandler
	AssignmentHandler     *handler.AssignmentHandler
	StudentViewHandler    *handler.StudentViewHandler
	SubmissionHandler     *handler.SubmissionHandler
	CommentHandler        *handler.CommentHandler
	UserHandler           *handler.UserHandler
	AuthHandler           *handler.AuthHandler
	ArticleHandler        *handler.ArticleHandler
	ActivityHandler       *handler.ActivityHandler
	JWTMiddleware         fiber.Handler
	HealthChecks          []handler.HealthCheck
	// RateLimitStorage shares limiter counters between instances; nil keeps them in memory.
	RateLimitStorage fiber.Storage
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.Health(cfg, deps.HealthChecks...))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	administrative := middleware.RequireAdministrative()

	if deps.AuthHandler != nil {
		loginLimit := middleware.RateLimit("login", cfg.LoginRatePerMinute, time.Minute, deps.RateLimitStorage)
		deps.AuthHandler.Register(api.Group("/auth"), jwtMiddleware, loginLimit)
	}

	if deps.ArticleHandler != nil {
		deps.ArticleHandler.Register(api.Group("/articles"), jwtMiddleware, administrative)
	}

	sets := api.Group("/requirement-sets", jwtMiddleware)
	if deps.RequirementSetHandler != nil {
		deps.RequirementSetHandler.Register(sets, administrative)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(sets, administrative)
	}
	if deps.StudentViewHandler != nil {
		deps.StudentViewHandler.Register(sets, administrative)
	}

	if deps.SubmissionHandler != nil {
		uploadLimit := middleware.RateLimit("upload", cfg.UploadRatePerMinute, time.Minute, deps.RateLimitStorage)
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware), administrative, uploadLimit)
	}

	if deps.CommentHandler != nil {
		deps.CommentHandler.Register(api.Group("/submission-comments", jwtMiddleware))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware), administrative)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/admin/activity", jwtMiddleware))
	}
}
