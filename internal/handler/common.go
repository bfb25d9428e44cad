package handler // handler defines http handlers

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims decode as float64; the partner gate stores
// uint64 directly; tests may use strings. All are accepted.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getPartnerID extracts the partner_id placed in context by the partner
// status gate.
func getPartnerID(c echo.Context) (uint64, error) {
    if v, ok := c.Get("partner_id").(uint64); ok && v != 0 {
        return v, nil
    }
    return 0, errors.New("invalid partner_id in context")
}

// getRole returns the role claim stored by the auth middleware.
func getRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}
