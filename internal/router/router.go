package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/engagekit/engage-go-api/internal/config"
	"github.com/engagekit/engage-go-api/internal/handler"
	"github.com/engagekit/engage-go-api/internal/middleware"
	"github.com/engagekit/engage-go-api/internal/models"
	"github.com/engagekit/engage-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler         *handler.ActivityHandler
	TemplateHandler         *handler.TemplateHandler
	ParticipantHandler      *handler.ParticipantHandler
	NotificationHandler     *handler.NotificationHandler
	UserNotificationHandler *handler.UserNotificationHandler
	StatsHandler            *handler.StatsHandler
	ExportHandler           *handler.ExportHandler
	ContactHandler          *handler.ContactHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health, metrics & public intake
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.ContactHandler != nil {
		contact := api.Group("/contact", middleware.RateLimit("contact", 5, time.Minute))
		deps.ContactHandler.Register(contact)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleSuperAdmin)

	// Activities (CRUD, templates, notifications, stats, exports)
	if deps.ActivityHandler != nil {
		activities := app.Group("/api/v2/activities", jwtMiddleware, staffOnly)
		deps.ActivityHandler.Register(activities)

		if deps.TemplateHandler != nil {
			deps.TemplateHandler.Register(activities)
		}
		if deps.NotificationHandler != nil {
			deps.NotificationHandler.Register(activities)
		}
		if deps.StatsHandler != nil {
			deps.StatsHandler.Register(activities)
		}
		if deps.ExportHandler != nil {
			deps.ExportHandler.Register(activities)
		}
	}

	// Participants
	if deps.ParticipantHandler != nil {
		participants := app.Group("/api/v2/participants", jwtMiddleware, staffOnly)
		deps.ParticipantHandler.Register(participants)
	}

	// In-app notifications (any authenticated dashboard user, no role gate)
	if deps.UserNotificationHandler != nil {
		requireUser := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{
			Role:        middleware.AuthRoleAny,
			RequireUser: true,
		})
		notifications := app.Group("/api/v2/notifications", jwtMiddleware, requireUser)
		deps.UserNotificationHandler.Register(notifications)
	}
}
