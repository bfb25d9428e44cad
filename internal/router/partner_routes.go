package router

import (
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/handler"
    "github.com/loftalgerie/loft-api/internal/middleware"
    "github.com/loftalgerie/loft-api/internal/model"
)

// RegisterPartner registers the partner surface.  Registration and status
// polling sit behind plain JWT auth so an applicant can reach them in any
// verification state; the dashboard (property and reservation management)
// sits behind the partner status gate, which redirects rather than
// returning 401 and only lets active partners through.
func RegisterPartner(e *echo.Echo, ph *handler.PartnerHandler, partners middleware.PartnerLoader, jwtSecret string) {
    // Application endpoints: any authenticated user with the PARTNER role
    // can apply and poll the state of their application.
    apply := e.Group("/v1/partner")
    apply.Use(middleware.JWTAuth(jwtSecret))
    apply.Use(middleware.RequireRole(model.RolePartner, model.RoleAdmin))
    apply.POST("/register", ph.Register)
    apply.GET("/status", ph.Status)

    // Dashboard endpoints: the gate authenticates the session itself and
    // enforces the active verification status, so no other auth middleware
    // is stacked here.
    dash := e.Group("/v1/partner/properties")
    dash.Use(middleware.PartnerGate(jwtSecret, partners))
    dash.POST("", ph.CreateLoft)
    dash.GET("", ph.ListLofts)
    dash.PUT("/:id", ph.UpdateLoft)
    dash.PATCH("/:id", ph.UpdateLoft)
    dash.DELETE("/:id", ph.DeleteLoft)
    dash.GET("/:id/reservations", ph.ListLoftReservations)
}
