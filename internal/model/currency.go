package model

import "time"

// CurrencyRate holds the conversion rate from one currency into Algerian
// dinars.  DZD itself is stored with a rate of 1 so conversion code does
// not need to special-case the base currency.  Rates are maintained by
// admins; there is no external FX feed.
//
// Fields:
//  Code      – ISO 4217 currency code (DZD, EUR, USD, ...).
//  RateToDZD – how many DZD one unit of the currency is worth.
//  UpdatedAt – when the rate was last set.
type CurrencyRate struct {
    Code      string    // currency_rates.code
    RateToDZD float64   // currency_rates.rate_to_dzd
    UpdatedAt time.Time // currency_rates.updated_at
}
