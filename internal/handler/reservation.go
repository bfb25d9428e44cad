package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/booking"
    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/permission"
    "github.com/loftalgerie/loft-api/internal/queue"
    "github.com/loftalgerie/loft-api/internal/repository"
    queue_publisher "github.com/loftalgerie/loft-api/internal/service"
)

// ReservationHandler implements the client booking flow: create a
// reservation (availability check, pricing and identifier generation in
// one transaction), list and fetch own reservations, confirm and
// cancel. Methods assume JWT authentication and role validation has
// already been performed by middleware.
type ReservationHandler struct {
    Lofts        *repository.LoftRepo
    Reservations *repository.ReservationRepo
    Audit        *repository.AuditRepo
}

// NewReservationHandler constructs a ReservationHandler with the
// provided repositories. All dependencies must be non-nil.
func NewReservationHandler(lofts *repository.LoftRepo, reservations *repository.ReservationRepo, audit *repository.AuditRepo) *ReservationHandler {
    if lofts == nil || reservations == nil || audit == nil {
        panic("nil repository passed to NewReservationHandler")
    }
    return &ReservationHandler{Lofts: lofts, Reservations: reservations, Audit: audit}
}

type reservationResp struct {
    ID               uint64 `json:"id"`
    BookingReference string `json:"booking_reference"`
    ConfirmationCode string `json:"confirmation_code,omitempty"`
    LoftID           uint64 `json:"loft_id"`
    GuestName        string `json:"guest_name"`
    GuestEmail       string `json:"guest_email"`
    CheckIn          string `json:"check_in"`
    CheckOut         string `json:"check_out"`
    Status           string `json:"status"`
    TotalAmount      uint64 `json:"total_amount"`
}

// toReservationResp maps a reservation to its wire form. The
// confirmation code is shared only with the guest who owns the booking;
// partner views pass withCode=false.
func toReservationResp(r model.Reservation, withCode bool) reservationResp {
    out := reservationResp{
        ID:               r.ID,
        BookingReference: r.BookingReference,
        LoftID:           r.LoftID,
        GuestName:        r.GuestName,
        GuestEmail:       r.GuestEmail,
        CheckIn:          r.CheckIn.Format("2006-01-02"),
        CheckOut:         r.CheckOut.Format("2006-01-02"),
        Status:           r.Status,
        TotalAmount:      r.TotalAmount,
    }
    if withCode {
        out.ConfirmationCode = r.ConfirmationCode
    }
    return out
}

func toReservationResps(items []model.Reservation, withCode bool) []reservationResp {
    out := make([]reservationResp, 0, len(items))
    for _, r := range items {
        out = append(out, toReservationResp(r, withCode))
    }
    return out
}

type createReservationReq struct {
    LoftID     uint64 `json:"loft_id"`
    GuestName  string `json:"guest_name"`
    GuestEmail string `json:"guest_email"`
    CheckIn    string `json:"check_in"`  // YYYY-MM-DD
    CheckOut   string `json:"check_out"` // YYYY-MM-DD
}

func parseDay(s string) (time.Time, error) {
    return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// Create handles POST /v1/reservations. The availability check, the
// insert and the audit entry run inside one transaction so two clients
// racing for the same dates serialize on the database; the unique
// indexes on booking_reference/confirmation_code make identifier
// collisions retry inside CreateTx rather than surface to the guest.
func (h *ReservationHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !permission.Allowed(getRole(c), "reservations", "create") {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.LoftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "loft_id required"})
    }
    req.GuestName = strings.TrimSpace(req.GuestName)
    req.GuestEmail = strings.ToLower(strings.TrimSpace(req.GuestEmail))
    if req.GuestName == "" || req.GuestEmail == "" || !strings.Contains(req.GuestEmail, "@") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_name and a valid guest_email are required"})
    }
    checkIn, err := parseDay(req.CheckIn)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
    }
    checkOut, err := parseDay(req.CheckOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
    }

    ctx := c.Request().Context()
    loft, err := h.Lofts.GetByID(ctx, req.LoftID)
    if err != nil {
        if errors.Is(err, repository.ErrLoftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "loft not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !loft.IsActive {
        return c.JSON(http.StatusConflict, echo.Map{"error": "loft is not open for booking"})
    }

    quote, err := booking.Price(loft.PricePerNight, loft.CleaningFee, checkIn, checkOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
    }

    tx, err := h.Reservations.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    taken, err := h.Reservations.OverlapExistsTx(ctx, tx, loft.ID, checkIn, checkOut)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
    }
    if taken {
        return c.JSON(http.StatusConflict, echo.Map{"error": "dates are not available"})
    }

    rec := &repository.ReservationRecord{
        LoftID:      loft.ID,
        UserID:      &userID,
        GuestName:   req.GuestName,
        GuestEmail:  req.GuestEmail,
        CheckIn:     checkIn,
        CheckOut:    checkOut,
        Status:      model.ReservationPending,
        TotalAmount: quote.Total,
    }
    if err := h.Reservations.CreateTx(ctx, tx, rec); err != nil {
        if errors.Is(err, booking.ErrReferenceExhausted) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not allocate booking reference"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    _ = h.Audit.Insert(ctx, "reservations", "create", &userID, nil)

    return c.JSON(http.StatusCreated, echo.Map{
        "reservation_id":    rec.ID,
        "booking_reference": rec.BookingReference,
        "confirmation_code": rec.ConfirmationCode,
        "status":            rec.Status,
        "quote":             quote,
    })
}

// List handles GET /v1/my-reservations.
func (h *ReservationHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": toReservationResps(items, true)})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    item, err := h.Reservations.GetByIDForUser(c.Request().Context(), resID, userID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(item, true)})
}

// Confirm handles POST /v1/reservations/:id/confirm. It transitions a
// PENDING reservation to CONFIRMED and publishes a
// reservation.confirmed event; publish failures are logged by the
// publisher and do not fail the request.
func (h *ReservationHandler) Confirm(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.Reservations.GetByIDForUser(ctx, resID, userID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
        }
    }
    if err := h.Reservations.UpdateStatus(ctx, resID,
        []string{model.ReservationPending}, model.ReservationConfirmed); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not pending"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm reservation"})
    }
    _ = h.Audit.Insert(ctx, "reservations", "confirm", &userID, nil)

    loft, lerr := h.Lofts.GetByID(ctx, res.LoftID)
    loftName := ""
    if lerr == nil {
        loftName = loft.Name
    }
    _ = queue_publisher.PublishReservationConfirmed(ctx, queue.ReservationConfirmedEvent{
        ReservationID:    res.ID,
        BookingReference: res.BookingReference,
        LoftID:           res.LoftID,
        LoftName:         loftName,
        GuestName:        res.GuestName,
        CheckIn:          res.CheckIn.Format("2006-01-02"),
        CheckOut:         res.CheckOut.Format("2006-01-02"),
        TotalAmount:      res.TotalAmount,
        ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "status":         model.ReservationConfirmed,
    })
}

// Cancel handles DELETE /v1/reservations/:id. A reservation can be
// cancelled by its owner up to the check-in date; afterwards 409.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.Reservations.GetByIDForUser(ctx, resID, userID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
        }
    }
    if !res.CheckIn.After(time.Now().UTC()) {
        return c.JSON(http.StatusConflict, echo.Map{"error": "stay already started"})
    }
    if err := h.Reservations.UpdateStatus(ctx, resID,
        []string{model.ReservationPending, model.ReservationConfirmed}, model.ReservationCancelled); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
    }
    _ = h.Audit.Insert(ctx, "reservations", "cancel", &userID, nil)
    return c.NoContent(http.StatusNoContent)
}

// Lookup handles GET /v1/bookings/:reference. It is public but requires
// the confirmation code as a query parameter; reference and code must
// both match, so the endpoint does not reveal whether a reference
// exists on its own.
func (h *ReservationHandler) Lookup(c echo.Context) error {
    ref := strings.ToUpper(strings.TrimSpace(c.Param("reference")))
    code := strings.ToUpper(strings.TrimSpace(c.QueryParam("code")))
    if !booking.ValidReference(ref) || !booking.ValidConfirmationCode(code) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference or code"})
    }
    item, err := h.Reservations.GetByReference(c.Request().Context(), ref, code)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toReservationResp(item, true)})
}
