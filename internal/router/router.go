package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-reservation/internal/config"
	"github.com/iliyamo/event-reservation/internal/handler"
	"github.com/iliyamo/event-reservation/internal/middleware"
	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/monitoring"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the Prometheus
// metrics endpoint.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	// Prometheus scrape endpoint.
	e.GET("/metrics", monitoring.Handler())
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth, while the protected
// /v1/me endpoint requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterEvents wires the public browse endpoints and the
// organizer-only event management routes.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string) {
	// Public browse surface: published events are visible without a session.
	e.GET("/v1/events", h.ListPublished)
	e.GET("/v1/events/:id", h.Get)

	// Organizer management surface.  Creating, publishing and cancelling
	// events requires the ORGANIZER role.
	org := e.Group("/v1/events")
	org.Use(middleware.JWTAuth(jwtSecret))
	org.Use(middleware.RequireRole(model.RoleOrganizer))
	org.POST("", h.Create)
	org.POST("/:id/publish", h.Publish)
	org.POST("/:id/cancel", h.Cancel)
}

// RegisterReservations wires the booking lifecycle endpoints.  The user
// surface (book, view, update, cancel, confirm payment) accepts both
// roles; the organizer surface (attendee lists, check-in, no-show,
// stats) is restricted to organizers.  A Redis-backed rate limiter
// guards the whole group when configured.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, o *handler.OrganizerHandler,
	jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.NewTokenBucket(rlCfg, rdb))

	// User booking surface.
	auth.POST("/reservations", r.Create)
	auth.GET("/reservations", r.ListMine)
	auth.GET("/reservations/:id", r.Get)
	auth.GET("/reservations/code/:code", r.GetByCode)
	auth.PATCH("/reservations/:id", r.Update)
	auth.POST("/reservations/:id/cancel", r.Cancel)
	auth.POST("/reservations/:id/confirm-payment", r.ConfirmPayment)

	// Organizer surface.
	org := auth.Group("", middleware.RequireRole(model.RoleOrganizer))
	org.GET("/events/:id/reservations", o.ListEventReservations)
	org.POST("/reservations/:id/check-in", o.CheckIn)
	org.POST("/reservations/:id/no-show", o.MarkNoShow)
	org.GET("/organizer/stats", o.OrganizerStats)
}
