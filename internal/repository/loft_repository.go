package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/loftalgerie/loft-api/internal/model"
)

// ErrLoftNotFound is returned when no loft exists for the requested id.
var ErrLoftNotFound = errors.New("loft not found")

// LoftRepo provides CRUD operations for loft listings. Write operations
// verify that the loft belongs to the calling partner and return
// ErrForbidden otherwise, mirroring how reservations enforce ownership.
type LoftRepo struct{ DB *sql.DB }

func NewLoftRepo(db *sql.DB) *LoftRepo { return &LoftRepo{DB: db} }

const loftCols = `id, partner_id, name, address, price_per_night, cleaning_fee, currency, is_active, created_at, updated_at`

// Create inserts a loft for a partner and returns the generated id.
func (r *LoftRepo) Create(ctx context.Context, l *model.Loft) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO lofts (partner_id, name, address, price_per_night, cleaning_fee, currency, is_active) VALUES (?,?,?,?,?,?,?)",
        l.PartnerID, l.Name, l.Address, l.PricePerNight, l.CleaningFee, l.Currency, l.IsActive)
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrConflict
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a loft by primary key.
func (r *LoftRepo) GetByID(ctx context.Context, id uint64) (model.Loft, error) {
    var l model.Loft
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+loftCols+" FROM lofts WHERE id=? LIMIT 1", id).
        Scan(&l.ID, &l.PartnerID, &l.Name, &l.Address, &l.PricePerNight,
            &l.CleaningFee, &l.Currency, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Loft{}, ErrLoftNotFound
    }
    return l, err
}

// ListActive returns all lofts open for booking, newest first. Used by
// the public browse endpoint.
func (r *LoftRepo) ListActive(ctx context.Context) ([]model.Loft, error) {
    return r.list(ctx, "SELECT "+loftCols+" FROM lofts WHERE is_active=1 ORDER BY created_at DESC")
}

// ListByPartner returns every loft operated by a partner, active or not.
func (r *LoftRepo) ListByPartner(ctx context.Context, partnerID uint64) ([]model.Loft, error) {
    return r.list(ctx, "SELECT "+loftCols+" FROM lofts WHERE partner_id=? ORDER BY created_at DESC", partnerID)
}

func (r *LoftRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Loft, error) {
    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Loft, 0)
    for rows.Next() {
        var l model.Loft
        if err := rows.Scan(&l.ID, &l.PartnerID, &l.Name, &l.Address, &l.PricePerNight,
            &l.CleaningFee, &l.Currency, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, l)
    }
    return out, rows.Err()
}

// Update modifies a loft's listing fields after verifying ownership.
// Returns ErrLoftNotFound when the loft does not exist and ErrForbidden
// when it belongs to a different partner.
func (r *LoftRepo) Update(ctx context.Context, partnerID uint64, l *model.Loft) error {
    if err := r.checkOwner(ctx, l.ID, partnerID); err != nil {
        return err
    }
    _, err := r.DB.ExecContext(ctx,
        "UPDATE lofts SET name=?, address=?, price_per_night=?, cleaning_fee=?, currency=?, is_active=? WHERE id=?",
        l.Name, l.Address, l.PricePerNight, l.CleaningFee, l.Currency, l.IsActive, l.ID)
    return err
}

// Delete removes a loft after verifying ownership. Lofts with existing
// reservations cannot be removed; the FK constraint surfaces as
// ErrConflict.
func (r *LoftRepo) Delete(ctx context.Context, loftID, partnerID uint64) error {
    if err := r.checkOwner(ctx, loftID, partnerID); err != nil {
        return err
    }
    _, err := r.DB.ExecContext(ctx, "DELETE FROM lofts WHERE id=?", loftID)
    if err != nil {
        // MySQL 1451: row is referenced by reservations
        if strings.Contains(err.Error(), "1451") {
            return ErrConflict
        }
        return err
    }
    return nil
}

func (r *LoftRepo) checkOwner(ctx context.Context, loftID, partnerID uint64) error {
    var owner uint64
    err := r.DB.QueryRowContext(ctx, "SELECT partner_id FROM lofts WHERE id=? LIMIT 1", loftID).Scan(&owner)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrLoftNotFound
    }
    if err != nil {
        return err
    }
    if owner != partnerID {
        return ErrForbidden
    }
    return nil
}
