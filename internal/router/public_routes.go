package router

import (
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized listing data; the
// ReservationHandler contributes the booking lookup by reference.  These
// routes carry no JWT or role middleware and are intended for guests.  The
// optional extra middleware (response cache, rate limiter) is applied to
// the whole public surface.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, res *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
    g := e.Group("/v1", mw...)
    // Browse all active lofts, optionally converting prices with ?currency=EUR
    g.GET("/lofts", p.ListLofts)
    // Listing details for a single loft
    g.GET("/lofts/:id", p.GetLoft)
    // Price a stay without creating a reservation
    g.GET("/lofts/:id/quote", p.Quote)
    // Look up a reservation by booking reference; requires ?code= to match
    g.GET("/bookings/:reference", res.Lookup)
}
