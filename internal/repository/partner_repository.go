package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/loftalgerie/loft-api/internal/model"
)

// ErrPartnerNotFound is returned when no partner profile exists for the
// requested id or user. Handlers translate this into a 404 or, in the
// middleware gate, a redirect to the registration page.
var ErrPartnerNotFound = errors.New("partner not found")

// ErrPartnerExists is returned when a user tries to register a second
// partner profile; user_id carries a unique index.
var ErrPartnerExists = errors.New("partner profile already exists")

// PartnerRepo provides CRUD operations for partner profiles and their
// verification lifecycle. Status transitions are only ever performed
// through the Approve/Reject/Suspend methods so the approved_by and
// rejected_by columns stay consistent with the status.
type PartnerRepo struct{ DB *sql.DB }

func NewPartnerRepo(db *sql.DB) *PartnerRepo { return &PartnerRepo{DB: db} }

const partnerCols = `id, user_id, business_name, verification_status, approved_by, rejected_by, created_at, updated_at`

func scanPartner(row *sql.Row) (model.Partner, error) {
    var p model.Partner
    var approvedBy, rejectedBy sql.NullInt64
    err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.VerificationStatus,
        &approvedBy, &rejectedBy, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.Partner{}, ErrPartnerNotFound
        }
        return model.Partner{}, err
    }
    if approvedBy.Valid {
        v := uint64(approvedBy.Int64)
        p.ApprovedBy = &v
    }
    if rejectedBy.Valid {
        v := uint64(rejectedBy.Int64)
        p.RejectedBy = &v
    }
    return p, nil
}

// Create registers a partner profile for a user in the pending state and
// returns the generated id.
func (r *PartnerRepo) Create(ctx context.Context, userID uint64, businessName string) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO partners (user_id, business_name, verification_status) VALUES (?,?,?)",
        userID, businessName, model.PartnerPending)
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrPartnerExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a partner profile by primary key.
func (r *PartnerRepo) GetByID(ctx context.Context, id uint64) (model.Partner, error) {
    return scanPartner(r.DB.QueryRowContext(ctx,
        "SELECT "+partnerCols+" FROM partners WHERE id=? LIMIT 1", id))
}

// GetByUserID fetches the partner profile attached to a user account.
// The middleware gate calls this on every partner route.
func (r *PartnerRepo) GetByUserID(ctx context.Context, userID uint64) (model.Partner, error) {
    return scanPartner(r.DB.QueryRowContext(ctx,
        "SELECT "+partnerCols+" FROM partners WHERE user_id=? LIMIT 1", userID))
}

// ListByStatus returns partner profiles in the given verification state,
// oldest first so the review queue is fair.
func (r *PartnerRepo) ListByStatus(ctx context.Context, status string) ([]model.Partner, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT "+partnerCols+" FROM partners WHERE verification_status=? ORDER BY created_at ASC", status)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Partner, 0)
    for rows.Next() {
        var p model.Partner
        var approvedBy, rejectedBy sql.NullInt64
        if err := rows.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.VerificationStatus,
            &approvedBy, &rejectedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
            return nil, err
        }
        if approvedBy.Valid {
            v := uint64(approvedBy.Int64)
            p.ApprovedBy = &v
        }
        if rejectedBy.Valid {
            v := uint64(rejectedBy.Int64)
            p.RejectedBy = &v
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// Approve transitions a pending partner to active and records the
// approving admin. It returns ErrPartnerNotFound when the partner does
// not exist and ErrConflict when the partner is not pending.
func (r *PartnerRepo) Approve(ctx context.Context, partnerID, adminID uint64) error {
    return r.transition(ctx, partnerID,
        "UPDATE partners SET verification_status=?, approved_by=?, rejected_by=NULL WHERE id=? AND verification_status=?",
        model.PartnerActive, adminID, partnerID, model.PartnerPending)
}

// Reject transitions a pending partner to rejected and records the
// rejecting admin.
func (r *PartnerRepo) Reject(ctx context.Context, partnerID, adminID uint64) error {
    return r.transition(ctx, partnerID,
        "UPDATE partners SET verification_status=?, rejected_by=? WHERE id=? AND verification_status=?",
        model.PartnerRejected, adminID, partnerID, model.PartnerPending)
}

// Suspend moves an active partner to suspended after a policy violation.
func (r *PartnerRepo) Suspend(ctx context.Context, partnerID, adminID uint64) error {
    return r.transition(ctx, partnerID,
        "UPDATE partners SET verification_status=?, rejected_by=? WHERE id=? AND verification_status=?",
        model.PartnerSuspended, adminID, partnerID, model.PartnerActive)
}

// transition runs a guarded status update. When zero rows were touched
// it distinguishes "no such partner" from "wrong current status".
func (r *PartnerRepo) transition(ctx context.Context, partnerID uint64, query string, args ...interface{}) error {
    res, err := r.DB.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists int
        err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM partners WHERE id=? LIMIT 1", partnerID).Scan(&exists)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrPartnerNotFound
        }
        if err != nil {
            return err
        }
        return ErrConflict
    }
    return nil
}
