package booking

import (
    "errors"
    "time"
)

// FlatTaxDZD is the fixed per-reservation tax applied to every quote.
const FlatTaxDZD = 500

// ErrInvalidStay is returned when the check-out date is not strictly
// after the check-in date.
var ErrInvalidStay = errors.New("check_out must be after check_in")

// Quote is the price breakdown for a stay.  All amounts are whole DZD.
type Quote struct {
    Nights      int    `json:"nights"`
    Base        uint64 `json:"base"`
    CleaningFee uint64 `json:"cleaning_fee"`
    Tax         uint64 `json:"tax"`
    Total       uint64 `json:"total"`
}

// Price computes the quote for a stay: nightly rate times the number of
// nights, plus the cleaning fee and the flat tax.  Nights are counted as
// whole days between check-in and check-out (a 15th→18th stay is three
// nights).
func Price(pricePerNight, cleaningFee uint64, checkIn, checkOut time.Time) (Quote, error) {
    nights := int(checkOut.Sub(checkIn).Hours() / 24)
    if nights <= 0 {
        return Quote{}, ErrInvalidStay
    }
    base := pricePerNight * uint64(nights)
    return Quote{
        Nights:      nights,
        Base:        base,
        CleaningFee: cleaningFee,
        Tax:         FlatTaxDZD,
        Total:       base + cleaningFee + FlatTaxDZD,
    }, nil
}
