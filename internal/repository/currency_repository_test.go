package repository

import (
    "context"
    "errors"
    "math"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
)

func rateRow(code string, rate float64) *sqlmock.Rows {
    return sqlmock.NewRows([]string{"code", "rate_to_dzd", "updated_at"}).
        AddRow(code, rate, time.Now())
}

func TestConvertThroughBase(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()
    repo := NewCurrencyRepo(db)

    // 145 DZD per EUR, 134 DZD per USD.
    mock.ExpectQuery(`SELECT code, rate_to_dzd, updated_at FROM currency_rates`).
        WithArgs("EUR").WillReturnRows(rateRow("EUR", 145))
    mock.ExpectQuery(`SELECT code, rate_to_dzd, updated_at FROM currency_rates`).
        WithArgs("USD").WillReturnRows(rateRow("USD", 134))

    got, err := repo.Convert(context.Background(), 100, "EUR", "USD")
    if err != nil {
        t.Fatalf("Convert: %v", err)
    }
    want := 100 * 145.0 / 134.0
    if math.Abs(got-want) > 1e-9 {
        t.Errorf("Convert = %f, want %f", got, want)
    }
}

func TestConvertSameCurrencySkipsLookup(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()
    repo := NewCurrencyRepo(db)

    got, err := repo.Convert(context.Background(), 5000, "DZD", "DZD")
    if err != nil {
        t.Fatalf("Convert: %v", err)
    }
    if got != 5000 {
        t.Errorf("Convert = %f, want 5000", got)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestConvertUnknownCurrency(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()
    repo := NewCurrencyRepo(db)

    mock.ExpectQuery(`SELECT code, rate_to_dzd, updated_at FROM currency_rates`).
        WithArgs("XXX").
        WillReturnRows(sqlmock.NewRows([]string{"code"}))

    _, err = repo.Convert(context.Background(), 100, "XXX", "DZD")
    if !errors.Is(err, ErrRateNotFound) {
        t.Fatalf("err = %v, want ErrRateNotFound", err)
    }
}
