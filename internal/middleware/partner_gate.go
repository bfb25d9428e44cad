package middleware

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/repository"
)

// Redirect targets used by the partner status gate.  Web clients depend
// on these exact paths.
const (
    PathLogin              = "/login"
    PathPartnerLogin       = "/partner/login"
    PathPartnerRegister    = "/partner/register"
    PathApplicationPending = "/partner/application-pending"
    PathPartnerRejected    = "/partner/rejected"
    PathPartnerSuspended   = "/partner/suspended"
)

// Response headers attached for downstream handlers once a partner has
// passed the gate.
const (
    HeaderPartnerID     = "x-partner-id"
    HeaderPartnerStatus = "x-partner-status"
    HeaderUserID        = "x-user-id"
)

// PartnerLoader is the slice of the partner repository the gate needs.
// Declared as an interface so tests can substitute a stub.
type PartnerLoader interface {
    GetByUserID(ctx context.Context, userID uint64) (model.Partner, error)
}

// PartnerGate returns a middleware that guards partner dashboard routes
// on the partner's verification status.  Unlike JWTAuth it never
// answers 401 JSON: every failure redirects the browser to a fixed
// page.  The decision ladder is:
//
//   no/invalid session          -> 303 /partner/login
//   role outside partner/admin/client -> 303 /login
//   no partner profile          -> 303 /partner/register
//   status pending              -> 303 /partner/application-pending
//   status rejected             -> 303 /partner/rejected
//   status suspended            -> 303 /partner/suspended
//   status active               -> attach headers, continue
//
// Any error during session or profile lookup fails closed to the
// partner login page.  On success the x-partner-id, x-partner-status
// and x-user-id response headers are set and partner_id is stored in
// the request context.
func PartnerGate(secret string, partners PartnerLoader) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            userID, role, ok := sessionFromRequest(c, secret)
            if !ok {
                return c.Redirect(http.StatusSeeOther, PathPartnerLogin)
            }
            switch role {
            case model.RolePartner, model.RoleAdmin, model.RoleClient:
            default:
                return c.Redirect(http.StatusSeeOther, PathLogin)
            }

            p, err := partners.GetByUserID(c.Request().Context(), userID)
            if err != nil {
                if errors.Is(err, repository.ErrPartnerNotFound) {
                    return c.Redirect(http.StatusSeeOther, PathPartnerRegister)
                }
                // fail closed on lookup errors
                return c.Redirect(http.StatusSeeOther, PathPartnerLogin)
            }

            switch p.VerificationStatus {
            case model.PartnerPending:
                return c.Redirect(http.StatusSeeOther, PathApplicationPending)
            case model.PartnerRejected:
                return c.Redirect(http.StatusSeeOther, PathPartnerRejected)
            case model.PartnerSuspended:
                return c.Redirect(http.StatusSeeOther, PathPartnerSuspended)
            case model.PartnerActive:
                h := c.Response().Header()
                h.Set(HeaderPartnerID, strconv.FormatUint(p.ID, 10))
                h.Set(HeaderPartnerStatus, model.PartnerActive)
                h.Set(HeaderUserID, strconv.FormatUint(userID, 10))
                c.Set("user_id", userID)
                c.Set("role", role)
                c.Set("partner_id", p.ID)
                return next(c)
            default:
                // unknown status: treat like a broken session
                return c.Redirect(http.StatusSeeOther, PathPartnerLogin)
            }
        }
    }
}

// sessionFromRequest parses the Bearer token itself rather than relying
// on JWTAuth, because the gate must redirect rather than return 401 when
// no session exists.  It returns the user id, the role claim and whether
// a valid session was found.
func sessionFromRequest(c echo.Context, secret string) (uint64, string, bool) {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return 0, "", false
    }
    raw := strings.TrimPrefix(auth, "Bearer ")
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, "", false
    }
    role, _ := claims["role"].(string)
    switch sub := claims["sub"].(type) {
    case float64:
        return uint64(sub), role, true
    case string:
        if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
            return n, role, true
        }
    }
    return 0, "", false
}
