package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/repository"
)

func newReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    h := NewReservationHandler(
        repository.NewLoftRepo(db),
        repository.NewReservationRepo(db),
        repository.NewAuditRepo(db),
    )
    return h, mock, func() { db.Close() }
}

func createContext(role string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    body := `{"loft_id":1,"guest_name":"Amine B","guest_email":"amine@example.com","check_in":"2026-07-01","check_out":"2026-07-04"}`
    req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.Set("user_id", uint64(5))
    c.Set("role", role)
    return c, rec
}

func TestCreateReservationRoleGrants(t *testing.T) {
    // Booking is open to clients, partners and admins; staff without the
    // grant are refused before any database work happens.
    h, mock, done := newReservationHandler(t)
    defer done()

    c, rec := createContext(model.RoleManager)
    if err := h.Create(c); err != nil {
        t.Fatalf("Create: %v", err)
    }
    if rec.Code != http.StatusForbidden {
        t.Fatalf("manager create status = %d, want 403", rec.Code)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("database should not be touched: %v", err)
    }
}

func TestCreateReservationMissingSession(t *testing.T) {
    h, mock, done := newReservationHandler(t)
    defer done()

    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(`{}`))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    if err := h.Create(c); err != nil {
        t.Fatalf("Create: %v", err)
    }
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("status = %d, want 401", rec.Code)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("database should not be touched: %v", err)
    }
}
