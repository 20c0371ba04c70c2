// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/eventra/event-ticketing/internal/config"
	"github.com/eventra/event-ticketing/internal/handler"
	"github.com/eventra/event-ticketing/internal/middleware"
	"github.com/eventra/event-ticketing/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth     *handler.AuthHandler
	Events   *handler.EventHandler
	Bookings *handler.BookingHandler
	Logger   *slog.Logger
	Redis    *redis.Client
	Cfg      config.Config
}

// Register sets up all routes. Organizer-only mutations and customer-only
// booking routes get their role gate here; ownership checks live in the
// handlers.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.RateLimit(d.Cfg.RateLimit, d.Redis))

	e.GET("/healthz", handler.Health)

	auth := e.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, middleware.JWTAuth(d.Cfg.JWTSecret))

	// Public browse endpoints; the listing sits behind the response cache.
	e.GET("/events", d.Events.List, middleware.CacheResponse(d.Cfg.Cache, d.Redis))
	e.GET("/events/:id", d.Events.Get)

	organizer := e.Group("/events",
		middleware.JWTAuth(d.Cfg.JWTSecret),
		middleware.RequireRole(model.RoleOrganizer))
	organizer.POST("", d.Events.Create)
	organizer.PUT("/:id", d.Events.Update)
	organizer.DELETE("/:id", d.Events.Delete)
	organizer.POST("/:id/publish", d.Events.Publish)

	bookings := e.Group("/bookings", middleware.JWTAuth(d.Cfg.JWTSecret))

	customer := bookings.Group("", middleware.RequireRole(model.RoleCustomer))
	customer.POST("", d.Bookings.Book)
	customer.GET("", d.Bookings.ListOwn)
	customer.PUT("/:id/cancel", d.Bookings.Cancel)

	// Visible to the booking's customer or the event's organizer; the
	// handler decides which.
	bookings.GET("/:id", d.Bookings.Get,
		middleware.RequireRole(model.RoleCustomer, model.RoleOrganizer))

	bookings.GET("/event/:eventId/bookings", d.Bookings.ListForEvent,
		middleware.RequireRole(model.RoleOrganizer))
}
