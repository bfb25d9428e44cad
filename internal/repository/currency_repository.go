package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/loftalgerie/loft-api/internal/model"
)

// ErrRateNotFound is returned when no conversion rate is stored for the
// requested currency code.
var ErrRateNotFound = errors.New("currency rate not found")

// CurrencyRepo stores admin-maintained conversion rates with DZD as the
// base currency.
type CurrencyRepo struct{ DB *sql.DB }

func NewCurrencyRepo(db *sql.DB) *CurrencyRepo { return &CurrencyRepo{DB: db} }

// Get fetches the rate for a currency code.
func (r *CurrencyRepo) Get(ctx context.Context, code string) (model.CurrencyRate, error) {
    var cr model.CurrencyRate
    err := r.DB.QueryRowContext(ctx,
        "SELECT code, rate_to_dzd, updated_at FROM currency_rates WHERE code=? LIMIT 1",
        code).Scan(&cr.Code, &cr.RateToDZD, &cr.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.CurrencyRate{}, ErrRateNotFound
    }
    return cr, err
}

// List returns every stored rate ordered by code.
func (r *CurrencyRepo) List(ctx context.Context) ([]model.CurrencyRate, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT code, rate_to_dzd, updated_at FROM currency_rates ORDER BY code")
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.CurrencyRate, 0)
    for rows.Next() {
        var cr model.CurrencyRate
        if err := rows.Scan(&cr.Code, &cr.RateToDZD, &cr.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, cr)
    }
    return out, rows.Err()
}

// Upsert creates or replaces a rate.
func (r *CurrencyRepo) Upsert(ctx context.Context, code string, rateToDZD float64) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO currency_rates (code, rate_to_dzd) VALUES (?,?)
         ON DUPLICATE KEY UPDATE rate_to_dzd=VALUES(rate_to_dzd)`,
        code, rateToDZD)
    return err
}

// Convert translates an amount between two currencies through the DZD
// base rate. DZD itself is stored with rate 1.
func (r *CurrencyRepo) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
    if from == to {
        return amount, nil
    }
    fromRate, err := r.Get(ctx, from)
    if err != nil {
        return 0, err
    }
    toRate, err := r.Get(ctx, to)
    if err != nil {
        return 0, err
    }
    if toRate.RateToDZD == 0 {
        return 0, ErrRateNotFound
    }
    return amount * fromRate.RateToDZD / toRate.RateToDZD, nil
}
