package router

import (
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/handler"
    "github.com/loftalgerie/loft-api/internal/middleware"
    "github.com/loftalgerie/loft-api/internal/model"
)

// RegisterAdmin registers the back-office surface.  Partner verification,
// archive management and currency rates are admin-only; the audit log is
// also readable by managers, who receive redacted entries.
func RegisterAdmin(e *echo.Echo, ah *handler.AdminHandler, jwtSecret string) {
    admin := e.Group("/v1/admin")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole(model.RoleAdmin))

    // Partner verification queue and transitions.
    admin.GET("/partners", ah.ListPartners)
    admin.POST("/partners/:id/approve", ah.ApprovePartner)
    admin.POST("/partners/:id/reject", ah.RejectPartner)
    admin.POST("/partners/:id/suspend", ah.SuspendPartner)

    // Archive policies and on-demand runs.
    admin.GET("/archive/policies", ah.ListPolicies)
    admin.PUT("/archive/policies", ah.UpsertPolicy)
    admin.POST("/archive/run", ah.RunAllArchives)
    admin.POST("/archive/run/:table", ah.RunArchive)

    // The audit log and currency rates are shared with managers; the
    // repository redacts audit details for them and the handler checks
    // the currency grant itself.
    staff := e.Group("/v1/admin")
    staff.Use(middleware.JWTAuth(jwtSecret))
    staff.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
    staff.GET("/audit", ah.ListAudit)
    staff.GET("/currency", ah.ListRates)
    staff.PUT("/currency", ah.UpsertRate)
}
