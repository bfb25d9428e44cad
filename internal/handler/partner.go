package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/repository"
)

// PartnerHandler groups the repositories partners need to manage their
// profile, their lofts and the reservations on them. Routes using this
// handler sit behind the partner status gate, so by the time a method
// runs the partner is known to be active and partner_id is in context
// (except Register, which is reachable by any PARTNER-role user).
type PartnerHandler struct {
    Partners     *repository.PartnerRepo
    Lofts        *repository.LoftRepo
    Reservations *repository.ReservationRepo
    Audit        *repository.AuditRepo
}

// NewPartnerHandler constructs a PartnerHandler with the provided
// repositories. All dependencies must be non-nil.
func NewPartnerHandler(partners *repository.PartnerRepo, lofts *repository.LoftRepo, reservations *repository.ReservationRepo, audit *repository.AuditRepo) *PartnerHandler {
    if partners == nil || lofts == nil || reservations == nil || audit == nil {
        panic("nil repository passed to NewPartnerHandler")
    }
    return &PartnerHandler{Partners: partners, Lofts: lofts, Reservations: reservations, Audit: audit}
}

type registerPartnerReq struct {
    BusinessName string `json:"business_name"`
}

type partnerResp struct {
    ID                 uint64  `json:"id"`
    UserID             uint64  `json:"user_id"`
    BusinessName       string  `json:"business_name"`
    VerificationStatus string  `json:"verification_status"`
    ApprovedBy         *uint64 `json:"approved_by,omitempty"`
    RejectedBy         *uint64 `json:"rejected_by,omitempty"`
}

func toPartnerResp(p model.Partner) partnerResp {
    return partnerResp{
        ID:                 p.ID,
        UserID:             p.UserID,
        BusinessName:       p.BusinessName,
        VerificationStatus: p.VerificationStatus,
        ApprovedBy:         p.ApprovedBy,
        RejectedBy:         p.RejectedBy,
    }
}

// Register handles POST /v1/partner/register. It creates a pending
// partner profile for the authenticated user and writes an audit entry.
// A user can hold at most one profile; a second attempt returns 409.
func (h *PartnerHandler) Register(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req registerPartnerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.BusinessName = strings.TrimSpace(req.BusinessName)
    if req.BusinessName == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "business_name required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    id, err := h.Partners.Create(ctx, userID, req.BusinessName)
    if err != nil {
        if errors.Is(err, repository.ErrPartnerExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "partner profile already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create partner failed"})
    }
    _ = h.Audit.Insert(ctx, "partners", "register", &userID, nil)

    return c.JSON(http.StatusCreated, echo.Map{
        "id":                  id,
        "verification_status": model.PartnerPending,
    })
}

// Status handles GET /v1/partner/status. Unlike the dashboard routes it
// is not gated, so partners can poll their application state.
func (h *PartnerHandler) Status(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    p, err := h.Partners.GetByUserID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrPartnerNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "partner profile not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toPartnerResp(p)})
}

// ----- lofts -----

type loftReq struct {
    Name          string `json:"name"`
    Address       string `json:"address"`
    PricePerNight uint64 `json:"price_per_night"`
    CleaningFee   uint64 `json:"cleaning_fee"`
    Currency      string `json:"currency"`
    IsActive      *bool  `json:"is_active"`
}

type loftResp struct {
    ID            uint64 `json:"id"`
    Name          string `json:"name"`
    Address       string `json:"address"`
    PricePerNight uint64 `json:"price_per_night"`
    CleaningFee   uint64 `json:"cleaning_fee"`
    Currency      string `json:"currency"`
    IsActive      bool   `json:"is_active"`
}

func toLoftResp(l model.Loft) loftResp {
    return loftResp{
        ID:            l.ID,
        Name:          l.Name,
        Address:       l.Address,
        PricePerNight: l.PricePerNight,
        CleaningFee:   l.CleaningFee,
        Currency:      l.Currency,
        IsActive:      l.IsActive,
    }
}

// CreateLoft handles POST /v1/partner/properties.
func (h *PartnerHandler) CreateLoft(c echo.Context) error {
    partnerID, err := getPartnerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req loftReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" || req.PricePerNight == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and price_per_night required"})
    }
    if req.Currency == "" {
        req.Currency = "DZD"
    }
    active := true
    if req.IsActive != nil {
        active = *req.IsActive
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    l := &model.Loft{
        PartnerID:     partnerID,
        Name:          req.Name,
        Address:       strings.TrimSpace(req.Address),
        PricePerNight: req.PricePerNight,
        CleaningFee:   req.CleaningFee,
        Currency:      strings.ToUpper(req.Currency),
        IsActive:      active,
    }
    id, err := h.Lofts.Create(ctx, l)
    if err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "loft name already in use"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create loft failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListLofts handles GET /v1/partner/properties.
func (h *PartnerHandler) ListLofts(c echo.Context) error {
    partnerID, err := getPartnerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lofts, err := h.Lofts.ListByPartner(c.Request().Context(), partnerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load lofts"})
    }
    items := make([]loftResp, 0, len(lofts))
    for _, l := range lofts {
        items = append(items, toLoftResp(l))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateLoft handles PUT/PATCH /v1/partner/properties/:id.
func (h *PartnerHandler) UpdateLoft(c echo.Context) error {
    partnerID, err := getPartnerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || loftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loft id"})
    }
    ctx := c.Request().Context()
    existing, err := h.Lofts.GetByID(ctx, loftID)
    if err != nil {
        if errors.Is(err, repository.ErrLoftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "loft not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    var req loftReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    // partial update: only overwrite fields the client sent
    if s := strings.TrimSpace(req.Name); s != "" {
        existing.Name = s
    }
    if s := strings.TrimSpace(req.Address); s != "" {
        existing.Address = s
    }
    if req.PricePerNight != 0 {
        existing.PricePerNight = req.PricePerNight
    }
    if req.CleaningFee != 0 {
        existing.CleaningFee = req.CleaningFee
    }
    if req.Currency != "" {
        existing.Currency = strings.ToUpper(req.Currency)
    }
    if req.IsActive != nil {
        existing.IsActive = *req.IsActive
    }
    if err := h.Lofts.Update(ctx, partnerID, &existing); err != nil {
        if errors.Is(err, repository.ErrForbidden) {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update loft failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toLoftResp(existing)})
}

// DeleteLoft handles DELETE /v1/partner/properties/:id.
func (h *PartnerHandler) DeleteLoft(c echo.Context) error {
    partnerID, err := getPartnerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || loftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loft id"})
    }
    ctx := c.Request().Context()
    if err := h.Lofts.Delete(ctx, loftID, partnerID); err != nil {
        switch {
        case errors.Is(err, repository.ErrLoftNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "loft not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "loft has reservations"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete loft failed"})
        }
    }
    return c.NoContent(http.StatusNoContent)
}

// ListLoftReservations handles GET /v1/partner/properties/:id/reservations.
func (h *PartnerHandler) ListLoftReservations(c echo.Context) error {
    partnerID, err := getPartnerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || loftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loft id"})
    }
    items, err := h.Reservations.ListByLoftForPartner(c.Request().Context(), loftID, partnerID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLoftNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "loft not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
        }
    }
    // Partners see bookings on their lofts but never the guests'
    // confirmation codes.
    return c.JSON(http.StatusOK, echo.Map{"items": toReservationResps(items, false)})
}
