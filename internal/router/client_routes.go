package router

import (
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/handler"
    "github.com/loftalgerie/loft-api/internal/middleware"
    "github.com/loftalgerie/loft-api/internal/model"
)

// RegisterClient registers the booking endpoints used by authenticated
// guests.  All routes require a valid access token; clients, partners and
// admins may all book stays.
func RegisterClient(e *echo.Echo, res *handler.ReservationHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleClient, model.RolePartner, model.RoleAdmin))

    // Create a reservation: availability check, pricing and identifier
    // generation run in one transaction.
    g.POST("/reservations", res.Create)
    // List the caller's own reservations, newest first.
    g.GET("/my-reservations", res.List)
    // Fetch one reservation; other users' reservations return 403.
    g.GET("/reservations/:id", res.Get)
    // Confirm a pending reservation and publish the confirmation event.
    g.POST("/reservations/:id/confirm", res.Confirm)
    // Cancel a reservation before check-in.
    g.DELETE("/reservations/:id", res.Cancel)
}
