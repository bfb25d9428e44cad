package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/loftalgerie/loft-api/internal/booking"
    "github.com/loftalgerie/loft-api/internal/model"
)

// ErrReservationNotFound is returned when no reservation matches the
// requested id or booking reference.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations. A
// reservation is identified externally by its booking reference and
// confirmation code; both columns carry unique indexes, and inserts
// regenerate the identifiers on a duplicate-key conflict instead of
// probing beforehand, so two concurrent bookings can never end up with
// colliding values.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ReservationRecord mirrors the schema of the reservations table. It is
// used internally by the repository when constructing or scanning rows.
// Business logic should use the model.Reservation type instead.
type ReservationRecord struct {
    ID               uint64
    BookingReference string
    ConfirmationCode string
    LoftID           uint64
    UserID           *uint64
    GuestName        string
    GuestEmail       string
    CheckIn          time.Time
    CheckOut         time.Time
    Status           string
    TotalAmount      uint64
    CreatedAt        time.Time
    UpdatedAt        time.Time
}

// OverlapExistsTx reports whether any PENDING or CONFIRMED reservation
// on the loft overlaps [checkIn, checkOut). Runs inside the caller's
// transaction with a locking read. The locks only cover what InnoDB
// scans, so an index on (loft_id, check_in) is required for the
// next-key locks to keep two concurrent bookings of the same dates
// from both passing this check.
func (r *ReservationRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, loftID uint64, checkIn, checkOut time.Time) (bool, error) {
    const q = `SELECT COUNT(*) FROM reservations
               WHERE loft_id = ? AND status IN ('PENDING','CONFIRMED')
                 AND check_in < ? AND check_out > ?
               FOR UPDATE`
    var n int
    if err := tx.QueryRowContext(ctx, q, loftID, checkOut, checkIn).Scan(&n); err != nil {
        return false, err
    }
    return n > 0, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction. The booking reference and confirmation code are
// generated here; when the insert hits a duplicate-key conflict on
// either unique index, fresh identifiers are generated and the insert
// retried, up to booking.MaxAttempts times. After exhaustion
// booking.ErrReferenceExhausted is returned. On success the generated
// ID, identifiers and timestamps are populated on the record.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *ReservationRecord) error {
    const q = `INSERT INTO reservations
               (booking_reference, confirmation_code, loft_id, user_id, guest_name, guest_email, check_in, check_out, status, total_amount)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    for attempt := 0; attempt < booking.MaxAttempts; attempt++ {
        ref, err := booking.NewReference(time.Now())
        if err != nil {
            return err
        }
        code, err := booking.NewConfirmationCode()
        if err != nil {
            return err
        }
        result, err := tx.ExecContext(ctx, q,
            ref, code, res.LoftID, res.UserID, res.GuestName, res.GuestEmail,
            res.CheckIn, res.CheckOut, res.Status, res.TotalAmount)
        if err != nil {
            if isDuplicateKey(err) {
                continue
            }
            return err
        }
        id, err := result.LastInsertId()
        if err != nil {
            return err
        }
        res.ID = uint64(id)
        res.BookingReference = ref
        res.ConfirmationCode = code
        // Query back the full row to populate timestamps and defaults
        const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
        return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
    }
    return booking.ErrReferenceExhausted
}

// ReferenceExists reports whether a booking reference is already taken.
// Diagnostic only: uniqueness is enforced by the index, not this probe.
func (r *ReservationRepo) ReferenceExists(ctx context.Context, ref string) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        "SELECT 1 FROM reservations WHERE booking_reference=? LIMIT 1", ref).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

const reservationCols = `id, booking_reference, confirmation_code, loft_id, user_id, guest_name, guest_email, check_in, check_out, status, total_amount, created_at, updated_at`

func scanReservation(scan func(dest ...interface{}) error) (model.Reservation, error) {
    var res model.Reservation
    var userID sql.NullInt64
    err := scan(&res.ID, &res.BookingReference, &res.ConfirmationCode, &res.LoftID,
        &userID, &res.GuestName, &res.GuestEmail, &res.CheckIn, &res.CheckOut,
        &res.Status, &res.TotalAmount, &res.CreatedAt, &res.UpdatedAt)
    if err != nil {
        return model.Reservation{}, err
    }
    if userID.Valid {
        v := uint64(userID.Int64)
        res.UserID = &v
    }
    return res, nil
}

// GetByReference fetches a reservation by booking reference and
// confirmation code. Both must match; a wrong code behaves like a
// missing reservation so the endpoint does not leak whether a
// reference exists.
func (r *ReservationRepo) GetByReference(ctx context.Context, ref, code string) (model.Reservation, error) {
    row := r.db.QueryRowContext(ctx,
        "SELECT "+reservationCols+" FROM reservations WHERE booking_reference=? AND confirmation_code=? LIMIT 1",
        ref, code)
    res, err := scanReservation(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// GetByIDForUser fetches a reservation and enforces that it belongs to
// the calling user. Returns ErrReservationNotFound when missing and
// ErrForbidden when owned by someone else.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.Reservation, error) {
    row := r.db.QueryRowContext(ctx,
        "SELECT "+reservationCols+" FROM reservations WHERE id=? LIMIT 1", id)
    res, err := scanReservation(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Reservation{}, ErrReservationNotFound
    }
    if err != nil {
        return model.Reservation{}, err
    }
    if res.UserID == nil || *res.UserID != userID {
        return model.Reservation{}, ErrForbidden
    }
    return res, nil
}

// ListByUser returns all reservations created by the user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    return r.list(ctx,
        "SELECT "+reservationCols+" FROM reservations WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListByLoftForPartner returns reservations on a loft when accessed by
// the partner operating it. It verifies ownership first and returns
// ErrForbidden when the loft belongs to a different partner.
func (r *ReservationRepo) ListByLoftForPartner(ctx context.Context, loftID, partnerID uint64) ([]model.Reservation, error) {
    var owner uint64
    err := r.db.QueryRowContext(ctx,
        "SELECT partner_id FROM lofts WHERE id=? LIMIT 1", loftID).Scan(&owner)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrLoftNotFound
    }
    if err != nil {
        return nil, err
    }
    if owner != partnerID {
        return nil, ErrForbidden
    }
    return r.list(ctx,
        "SELECT "+reservationCols+" FROM reservations WHERE loft_id=? ORDER BY created_at DESC", loftID)
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}

// UpdateStatus performs a guarded status transition. Only
// PENDING→CONFIRMED and {PENDING,CONFIRMED}→CANCELLED are legal; any
// other transition returns ErrConflict. Missing reservations return
// ErrReservationNotFound.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from []string, to string) error {
    if len(from) == 0 {
        return ErrConflict
    }
    query := "UPDATE reservations SET status=? WHERE id=? AND status IN (?"
    args := []interface{}{to, id, from[0]}
    for _, s := range from[1:] {
        query += ",?"
        args = append(args, s)
    }
    query += ")"
    res, err := r.db.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        err := r.db.QueryRowContext(ctx, "SELECT 1 FROM reservations WHERE id=? LIMIT 1", id).Scan(&exists)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrReservationNotFound
        }
        if err != nil {
            return err
        }
        return ErrConflict
    }
    return nil
}
