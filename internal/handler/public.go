package handler

import (
    "errors"
    "math"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/loftalgerie/loft-api/internal/booking"
    "github.com/loftalgerie/loft-api/internal/i18n"
    "github.com/loftalgerie/loft-api/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: listing
// active lofts, fetching one listing and quoting a stay. Prices are
// stored in DZD; an optional ?currency= parameter converts the display
// amounts through the stored rates.
type PublicHandler struct {
    Lofts    *repository.LoftRepo
    Currency *repository.CurrencyRepo
}

// NewPublicHandler constructs a PublicHandler with the provided
// repositories. All dependencies must be non-nil.
func NewPublicHandler(lofts *repository.LoftRepo, currency *repository.CurrencyRepo) *PublicHandler {
    if lofts == nil || currency == nil {
        panic("nil repository passed to NewPublicHandler")
    }
    return &PublicHandler{Lofts: lofts, Currency: currency}
}

type publicLoft struct {
    ID            uint64  `json:"id"`
    Name          string  `json:"name"`
    Address       string  `json:"address"`
    PricePerNight float64 `json:"price_per_night"`
    CleaningFee   float64 `json:"cleaning_fee"`
    Currency      string  `json:"currency"`
}

// ListLofts handles GET /v1/lofts. With ?currency=EUR the nightly price
// and cleaning fee are converted; an unknown code returns 400 rather
// than silently showing DZD.
func (h *PublicHandler) ListLofts(c echo.Context) error {
    ctx := c.Request().Context()
    lofts, err := h.Lofts.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load lofts"})
    }

    target := strings.ToUpper(strings.TrimSpace(c.QueryParam("currency")))
    out := make([]publicLoft, 0, len(lofts))
    for _, l := range lofts {
        item := publicLoft{
            ID:            l.ID,
            Name:          l.Name,
            Address:       l.Address,
            PricePerNight: float64(l.PricePerNight),
            CleaningFee:   float64(l.CleaningFee),
            Currency:      l.Currency,
        }
        if target != "" && target != l.Currency {
            price, err := h.Currency.Convert(ctx, item.PricePerNight, l.Currency, target)
            if err != nil {
                if errors.Is(err, repository.ErrRateNotFound) {
                    return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown currency"})
                }
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "currency conversion failed"})
            }
            fee, err := h.Currency.Convert(ctx, item.CleaningFee, l.Currency, target)
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "currency conversion failed"})
            }
            item.PricePerNight = round2(price)
            item.CleaningFee = round2(fee)
            item.Currency = target
        }
        out = append(out, item)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetLoft handles GET /v1/lofts/:id.
func (h *PublicHandler) GetLoft(c echo.Context) error {
    loftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || loftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loft id"})
    }
    lang := i18n.Pick(c.Request().Header.Get("Accept-Language"))
    l, err := h.Lofts.GetByID(c.Request().Context(), loftID)
    if err != nil {
        if errors.Is(err, repository.ErrLoftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": i18n.T(lang, "loft.not_found")})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !l.IsActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": i18n.T(lang, "loft.not_found")})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": publicLoft{
        ID:            l.ID,
        Name:          l.Name,
        Address:       l.Address,
        PricePerNight: float64(l.PricePerNight),
        CleaningFee:   float64(l.CleaningFee),
        Currency:      l.Currency,
    }})
}

// Quote handles GET /v1/lofts/:id/quote?check_in=...&check_out=... It
// prices a stay without creating anything, in the loft's currency, and
// labels the line items in the request language.
func (h *PublicHandler) Quote(c echo.Context) error {
    loftID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || loftID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loft id"})
    }
    checkIn, err := parseDay(c.QueryParam("check_in"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
    }
    checkOut, err := parseDay(c.QueryParam("check_out"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
    }
    lang := i18n.Pick(c.Request().Header.Get("Accept-Language"))

    l, err := h.Lofts.GetByID(c.Request().Context(), loftID)
    if err != nil {
        if errors.Is(err, repository.ErrLoftNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": i18n.T(lang, "loft.not_found")})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    quote, err := booking.Price(l.PricePerNight, l.CleaningFee, checkIn, checkOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be after check_in"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "quote":    quote,
        "currency": l.Currency,
        "labels": echo.Map{
            "total":        i18n.T(lang, "quote.total"),
            "tax":          i18n.T(lang, "quote.tax"),
            "cleaning_fee": i18n.T(lang, "quote.cleaning_fee"),
        },
    })
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
