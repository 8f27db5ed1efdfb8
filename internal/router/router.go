package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used to handle routing

    "github.com/iliyamo/event-ticketing/internal/handler"    // handlers implementing the endpoints
    "github.com/iliyamo/event-ticketing/internal/middleware" // JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check, public availability
// lookups and ticket verification.  Verification is deliberately public:
// venue scanners hold no user tokens.
func RegisterRoutes(e *echo.Echo, events *handler.EventHandler, tickets *handler.TicketHandler) {
    // Health endpoint for load balancers and monitoring.
    e.GET("/healthz", handler.Health)
    // Seat availability for an event, served through the Redis cache.
    e.GET("/v1/events/:id/availability", events.Availability)
    // Decode and validate a scanned ticket payload.
    e.POST("/v1/tickets/verify", tickets.Verify)
}

// RegisterReservations registers the authenticated reservation routes.
// All of them require a valid bearer token from the identity service and
// sit behind the Redis token-bucket limiter, since these are the routes
// a booking rush concentrates on.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    if limiter != nil {
        g.Use(limiter)
    }
    // Free-flow reservation: confirms synchronously and issues a ticket.
    g.POST("/events/:id/reservations/free", r.CreateFreeReservation)
    // Re-run ticket issuance for a confirmed reservation without one.
    g.POST("/reservations/:id/ticket", r.RetryTicketIssuance)
}
