// Package server assembles the fiber application: middleware, error
// rendering and every route with its access list.
package server

import (
	"errors"
	"strings"
	"time"

	"foodloop-backend/internal/account"
	"foodloop-backend/internal/activity"
	"foodloop-backend/internal/admin"
	"foodloop-backend/internal/auth"
	"foodloop-backend/internal/config"
	"foodloop-backend/internal/logging"
	"foodloop-backend/internal/metrics"
	"foodloop-backend/internal/models"
	"foodloop-backend/internal/notifications"
	"foodloop-backend/internal/partner"
	"foodloop-backend/internal/points"
	"foodloop-backend/internal/staff"
	"foodloop-backend/internal/store"
	"foodloop-backend/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock fixes the time seen by handlers and transitions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the application. m may be nil, in which case no metrics are
// recorded and /metrics is not mounted.
func New(cfg *config.Config, st store.Store, m *metrics.Metrics, opts ...Option) *fiber.App {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	app := fiber.New(fiber.Config{
		AppName:      "foodloop-backend",
		ErrorHandler: errorHandler(cfg),
	})

	app.Use(recover.New())
	origins := strings.Join(cfg.Origins(), ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-Id",
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	}))
	app.Use(logging.Middleware(auth.UserID))

	wopts := []workflow.Option{workflow.WithClock(o.now)}
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
		wopts = append(wopts, workflow.WithRecorder(m))
	}
	svc := workflow.NewService(st, wopts...)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public
	api.Post("/auth/login", auth.LoginHandler(cfg, st))

	protected := api.Group("", auth.IdentityMiddleware(cfg.JWTSecret, st), noStore)

	var (
		anyUser     = auth.Require(auth.Authenticated())
		adminOnly   = auth.Require(auth.Roles(models.RoleAdmin))
		staffOrAdm  = auth.Require(auth.Roles(models.RoleAdmin, models.RoleStaff))
		charityOnly = auth.Require(auth.Partner(models.BusinessNGO))
		farmerOnly  = auth.Require(auth.Partner(models.BusinessFarm))
	)

	protected.Get("/auth/me", anyUser, auth.MeHandler(st))

	// Dashboard for the business owner
	adminRoutes := protected.Group("/admin")
	adminRoutes.Get("/stats", staffOrAdm, admin.StatsHandler(st))
	adminRoutes.Get("/actions-breakdown", staffOrAdm, admin.ActionsBreakdownHandler(st))
	adminRoutes.Get("/waste-breakdown", staffOrAdm, admin.WasteBreakdownHandler(st))
	adminRoutes.Get("/activity", adminOnly, activity.ListActivityHandler(st))
	adminRoutes.Get("/export", staffOrAdm, admin.ExportHandler(st))
	adminRoutes.Get("/pickups", staffOrAdm, admin.ListPickupsHandler(st))
	adminRoutes.Post("/pickups/:id/approve", staffOrAdm, admin.ApprovePickupHandler(st, svc))
	adminRoutes.Post("/pickups/:id/reject", staffOrAdm, admin.RejectPickupHandler(st, svc))
	adminRoutes.Post("/pickups/:id/collected", adminOnly, admin.CollectedPickupHandler(st, svc))

	// Staff logging waste
	staffRoutes := protected.Group("/staff", staffOrAdm)
	staffRoutes.Get("/stats", staff.StatsHandler(st, o.now))
	staffRoutes.Get("/waste-breakdown", staff.WasteBreakdownHandler(st))
	staffRoutes.Get("/actions-breakdown", staff.ActionsBreakdownHandler(st))
	staffRoutes.Get("/drop-alerts", staff.DropAlertsHandler(st, o.now))
	staffRoutes.Get("/waste", staff.ListWasteHandler(st))
	staffRoutes.Post("/waste", staff.CreateWasteHandler(st, svc))
	staffRoutes.Post("/waste/import", staff.ImportWasteHandler(st, svc))
	staffRoutes.Post("/waste/:id/drop", staff.DropHandler(st, svc))

	// Partner portals
	registerPartner(protected.Group("/charity", charityOnly), st, svc, partner.Charity)
	registerPartner(protected.Group("/farmer", farmerOnly), st, svc, partner.Farmer)

	// Any signed-in user
	protected.Get("/notifications", anyUser, notifications.ListHandler(st))
	protected.Patch("/notifications", anyUser, notifications.MarkReadHandler(st))
	protected.Get("/points", anyUser, points.SummaryHandler(st))
	protected.Post("/user/password", account.ChangePasswordHandler(st))

	return app
}

func registerPartner(r fiber.Router, st store.Store, svc *workflow.Service, p partner.Portal) {
	r.Get("/available", partner.AvailableHandler(st, p))
	r.Get("/requests", partner.MyRequestsHandler(st))
	r.Post("/requests", partner.CreateRequestHandler(svc))
	r.Post("/requests/:id/collected", partner.CollectedHandler(svc))
}

// noStore keeps per-user reads out of shared caches.
func noStore(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet {
		c.Set(fiber.HeaderCacheControl, "no-store")
	}
	return c.Next()
}

func errorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}

		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")

		body := fiber.Map{"error": "Internal server error"}
		if !cfg.Production() {
			body["message"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
