// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinematrix/cinematrix/internal/handler"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Movies       *handler.MovieHandler
	Showtimes    *handler.ShowtimeHandler
	Reservations *handler.ReservationHandler

	// Identity injects the opaque user id; required on every route
	// that writes or reads on behalf of a user.
	Identity echo.MiddlewareFunc
	// Cache is applied to the public browse endpoints.
	Cache echo.MiddlewareFunc
	// RateLimit guards the booking endpoint.
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers the health check, the public browse
// endpoints and the identity-protected catalog and booking endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	// Public browse surface; cached responses are fine here because
	// listings tolerate the configured staleness.
	e.GET("/v1/movies", h.Movies.ListMovies, h.Cache)
	e.GET("/v1/movies/:id", h.Movies.GetMovie)
	e.GET("/v1/showtimes", h.Showtimes.ListShowtimes, h.Cache)
	e.GET("/v1/showtimes/:id/seats", h.Showtimes.ListReservedSeats, h.Cache)

	// Catalog management and booking require an identity.
	auth := e.Group("/v1", h.Identity)
	auth.POST("/movies", h.Movies.CreateMovie)
	auth.DELETE("/movies/:id", h.Movies.DeleteMovie)
	auth.POST("/movies/:id/showtimes", h.Showtimes.CreateShowtime)
	auth.POST("/showtimes/:id/reservations", h.Reservations.CreateReservation, h.RateLimit)
	auth.GET("/me/reservations", h.Reservations.ListMyReservations)
}
