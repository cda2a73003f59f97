package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/easyaudit-api/internal/config"
	"github.com/noah-isme/easyaudit-api/internal/handler"
	"github.com/noah-isme/easyaudit-api/internal/middleware"
	"github.com/noah-isme/easyaudit-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler *handler.ActivityHandler
	DB              *gorm.DB
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		if cfg.AppName != "" {
			c.Set("X-Application", cfg.AppName)
		}
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	if deps.ActivityHandler == nil {
		return
	}

	var read, write []fiber.Handler
	if cfg.AuthEnabled() {
		auth := middleware.JWTProtected(cfg.JWTSecret)
		read = []fiber.Handler{auth, middleware.RequireRole(middleware.RoleAdmin, middleware.RoleAuditor)}
		write = []fiber.Handler{
			auth,
			middleware.RequireRole(middleware.RoleAdmin, middleware.RoleService),
			middleware.RateLimit("activities:write", cfg.RateLimitMax, cfg.RateLimitWindow),
		}
	}

	deps.ActivityHandler.Register(api.Group("/activities"), read, write)
}
