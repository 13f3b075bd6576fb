package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/leadops/lead-dashboard/internal/api/http/handlers"
	"github.com/leadops/lead-dashboard/internal/auth"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Collections    *handlers.CollectionsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	requireOperator := auth.RequireRole()
	requireAdmin := auth.RequireRole(domain.OperatorRoleAdmin)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle, requireOperator)
	dashboard.Get("/leads", cfg.Dashboard.Leads)
	dashboard.Get("/delayed", cfg.Dashboard.Delayed)
	dashboard.Get("/stage-counts", cfg.Dashboard.StageCounts)
	dashboard.Get("/summary", cfg.Dashboard.Summary)

	app.Get("/stages", cfg.AuthMiddleware.Handle, requireOperator, cfg.Collections.GetStages)
	app.Put("/stages", cfg.AuthMiddleware.Handle, requireAdmin, cfg.Collections.ReplaceStages)
	app.Put("/leads", cfg.AuthMiddleware.Handle, requireAdmin, cfg.Collections.ReplaceLeads)
}
