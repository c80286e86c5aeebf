package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/verif-backoffice/internal/api/http/handlers"
	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/pkg/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admins         *handlers.AdminsHandler
	Submissions    *handlers.SubmissionsHandler
	Refunds        *handlers.RefundsHandler
	Contacts       *handlers.ContactsHandler
	Notifications  *handlers.NotificationsHandler
	Statistics     *handlers.StatisticsHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        ratelimit.Limiter
	LoginRate      ratelimit.Rate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	if cfg.Limiter != nil {
		authGroup.Post("/login", ratelimit.LimitByIP(cfg.Limiter, "login", cfg.LoginRate), cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Post("/register", cfg.Auth.Register)

	requireAdmin := auth.RequireRole()
	session := authGroup.Group("", cfg.AuthMiddleware.Handle, requireAdmin)
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/me", cfg.Auth.Me)
	session.Post("/password/change", cfg.Auth.ChangePassword)

	admins := app.Group("/admins", cfg.AuthMiddleware.Handle, requireAdmin)
	admins.Get("/", cfg.Admins.List)
	admins.Get("/pending", cfg.Admins.ListPending)
	admins.Get("/:id", cfg.Admins.Get)
	admins.Post("/:id/authorize", cfg.Admins.Authorize)
	admins.Post("/:id/revoke", cfg.Admins.Revoke)
	admins.Post("/:id/deactivate", auth.RequireSuperAdmin(), cfg.Admins.Deactivate)

	submissions := app.Group("/submissions", cfg.AuthMiddleware.Handle, requireAdmin)
	submissions.Get("/", cfg.Submissions.List)
	submissions.Get("/:id", cfg.Submissions.Get)
	submissions.Put("/:id/coupons/:index/status", cfg.Submissions.UpdateCouponStatus)
	submissions.Put("/:id/status", cfg.Submissions.UpdateStatus)
	submissions.Post("/:id/email-sent", cfg.Submissions.MarkEmailSent)

	refunds := app.Group("/refunds", cfg.AuthMiddleware.Handle, requireAdmin)
	refunds.Get("/", cfg.Refunds.List)
	refunds.Get("/:reference", cfg.Refunds.GetByReference)
	refunds.Put("/:id/status", cfg.Refunds.UpdateStatus)

	contacts := app.Group("/contacts", cfg.AuthMiddleware.Handle, requireAdmin)
	contacts.Get("/", cfg.Contacts.List)
	contacts.Get("/:id", cfg.Contacts.Get)
	contacts.Post("/:id/read", cfg.Contacts.MarkRead)
	contacts.Post("/:id/unread", cfg.Contacts.MarkUnread)
	contacts.Delete("/:id", cfg.Contacts.Delete)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, requireAdmin)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/count", cfg.Notifications.Count)
	notifications.Get("/stream", cfg.Notifications.Stream)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)

	app.Get("/statistics", cfg.AuthMiddleware.Handle, requireAdmin, cfg.Statistics.Get)
}
