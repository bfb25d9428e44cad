package middleware

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/repository"
    "github.com/loftalgerie/loft-api/internal/utils"
)

const gateSecret = "test-secret"

// stubLoader serves canned partner profiles keyed by user id.
type stubLoader struct {
    partners map[uint64]model.Partner
    err      error
}

func (s *stubLoader) GetByUserID(_ context.Context, userID uint64) (model.Partner, error) {
    if s.err != nil {
        return model.Partner{}, s.err
    }
    p, ok := s.partners[userID]
    if !ok {
        return model.Partner{}, repository.ErrPartnerNotFound
    }
    return p, nil
}

func gateRequest(t *testing.T, loader PartnerLoader, token string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/partner/properties", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    h := PartnerGate(gateSecret, loader)(func(c echo.Context) error {
        return c.NoContent(http.StatusOK)
    })
    if err := h(c); err != nil {
        t.Fatalf("handler returned error: %v", err)
    }
    return rec
}

func tokenFor(t *testing.T, userID uint64, role string) string {
    t.Helper()
    at, err := utils.NewAccessToken(gateSecret, userID, role, 5)
    if err != nil {
        t.Fatalf("sign token: %v", err)
    }
    return at.Token
}

// assertNoPartnerHeaders verifies a redirect response carries none of
// the headers reserved for active partners.
func assertNoPartnerHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
    t.Helper()
    for _, h := range []string{HeaderPartnerID, HeaderPartnerStatus, HeaderUserID} {
        if v := rec.Header().Get(h); v != "" {
            t.Errorf("header %s = %q, want unset on redirect", h, v)
        }
    }
}

func TestPartnerGateNoSession(t *testing.T) {
    rec := gateRequest(t, &stubLoader{}, "")
    if rec.Code != http.StatusSeeOther {
        t.Fatalf("status = %d, want 303", rec.Code)
    }
    if loc := rec.Header().Get("Location"); loc != PathPartnerLogin {
        t.Errorf("redirect = %q, want %q", loc, PathPartnerLogin)
    }
    assertNoPartnerHeaders(t, rec)
}

func TestPartnerGateBadToken(t *testing.T) {
    rec := gateRequest(t, &stubLoader{}, "not-a-jwt")
    if loc := rec.Header().Get("Location"); loc != PathPartnerLogin {
        t.Errorf("redirect = %q, want %q", loc, PathPartnerLogin)
    }
    assertNoPartnerHeaders(t, rec)
}

func TestPartnerGateUnknownRole(t *testing.T) {
    rec := gateRequest(t, &stubLoader{}, tokenFor(t, 1, "SOMETHING"))
    if loc := rec.Header().Get("Location"); loc != PathLogin {
        t.Errorf("redirect = %q, want %q", loc, PathLogin)
    }
    assertNoPartnerHeaders(t, rec)
}

func TestPartnerGateNoProfile(t *testing.T) {
    rec := gateRequest(t, &stubLoader{partners: map[uint64]model.Partner{}}, tokenFor(t, 1, model.RolePartner))
    if loc := rec.Header().Get("Location"); loc != PathPartnerRegister {
        t.Errorf("redirect = %q, want %q", loc, PathPartnerRegister)
    }
    assertNoPartnerHeaders(t, rec)
}

func TestPartnerGateStatusRedirects(t *testing.T) {
    cases := []struct {
        status string
        want   string
    }{
        {model.PartnerPending, PathApplicationPending},
        {model.PartnerRejected, PathPartnerRejected},
        {model.PartnerSuspended, PathPartnerSuspended},
        {"garbage", PathPartnerLogin},
    }
    for _, tc := range cases {
        loader := &stubLoader{partners: map[uint64]model.Partner{
            7: {ID: 99, UserID: 7, VerificationStatus: tc.status},
        }}
        rec := gateRequest(t, loader, tokenFor(t, 7, model.RolePartner))
        if rec.Code != http.StatusSeeOther {
            t.Errorf("%s: status = %d, want 303", tc.status, rec.Code)
        }
        if loc := rec.Header().Get("Location"); loc != tc.want {
            t.Errorf("%s: redirect = %q, want %q", tc.status, loc, tc.want)
        }
        assertNoPartnerHeaders(t, rec)
    }
}

func TestPartnerGateLookupErrorFailsClosed(t *testing.T) {
    loader := &stubLoader{err: errors.New("connection refused")}
    rec := gateRequest(t, loader, tokenFor(t, 7, model.RolePartner))
    if loc := rec.Header().Get("Location"); loc != PathPartnerLogin {
        t.Errorf("redirect = %q, want %q", loc, PathPartnerLogin)
    }
    assertNoPartnerHeaders(t, rec)
}

func TestPartnerGateActivePassesThrough(t *testing.T) {
    loader := &stubLoader{partners: map[uint64]model.Partner{
        7: {ID: 99, UserID: 7, VerificationStatus: model.PartnerActive},
    }}
    rec := gateRequest(t, loader, tokenFor(t, 7, model.RolePartner))
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if got := rec.Header().Get(HeaderPartnerID); got != "99" {
        t.Errorf("%s = %q, want 99", HeaderPartnerID, got)
    }
    if got := rec.Header().Get(HeaderPartnerStatus); got != model.PartnerActive {
        t.Errorf("%s = %q, want %q", HeaderPartnerStatus, got, model.PartnerActive)
    }
    if got := rec.Header().Get(HeaderUserID); got != "7" {
        t.Errorf("%s = %q, want 7", HeaderUserID, got)
    }
}
