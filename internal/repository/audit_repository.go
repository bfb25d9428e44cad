package repository

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "github.com/loftalgerie/loft-api/internal/model"
    "github.com/loftalgerie/loft-api/internal/permission"
)

// AuditRepo wraps reads and writes of the append-only audit_logs table
// and the archive/cleanup operations that enforce retention. Visibility
// of audit rows is role-based: admins get full entries, managers get
// entries with Details redacted, everyone else gets nothing.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Insert appends an audit entry. Audit writes are best-effort from the
// caller's point of view but the error is returned so handlers can log
// it; rows are never updated or deleted outside the archive jobs.
func (r *AuditRepo) Insert(ctx context.Context, tableName, action string, actorID *uint64, details *string) error {
    _, err := r.DB.ExecContext(ctx,
        "INSERT INTO audit_logs (table_name, action, actor_id, details) VALUES (?,?,?,?)",
        tableName, action, actorID, details)
    return err
}

// insertTx is Insert inside an existing transaction, used by the archive
// jobs so the audit record commits atomically with the run itself.
func (r *AuditRepo) insertTx(ctx context.Context, tx *sql.Tx, tableName, action string, actorID *uint64, details *string) error {
    _, err := tx.ExecContext(ctx,
        "INSERT INTO audit_logs (table_name, action, actor_id, details) VALUES (?,?,?,?)",
        tableName, action, actorID, details)
    return err
}

// ListForRole returns up to limit recent audit entries visible to the
// given role. Roles without audit access get ErrForbidden; managers
// receive rows with the Details column redacted.
func (r *AuditRepo) ListForRole(ctx context.Context, role string, limit int) ([]model.AuditLog, error) {
    if !permission.Allowed(role, "audit", "view") {
        return nil, ErrForbidden
    }
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id, table_name, action, actor_id, details, created_at FROM audit_logs ORDER BY created_at DESC LIMIT ?",
        limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    redact := !permission.CanSeeAuditDetails(role)
    out := make([]model.AuditLog, 0, limit)
    for rows.Next() {
        var e model.AuditLog
        var actorID sql.NullInt64
        var details sql.NullString
        if err := rows.Scan(&e.ID, &e.TableName, &e.Action, &actorID, &details, &e.CreatedAt); err != nil {
            return nil, err
        }
        if actorID.Valid {
            v := uint64(actorID.Int64)
            e.ActorID = &v
        }
        if details.Valid && !redact {
            v := details.String
            e.Details = &v
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// cutoffColumn maps a source table to the timestamp column its retention
// cutoff is computed from. Most tables age on created_at; guest visit
// tracking ages on visited_at and refresh tokens on their expiry.
func cutoffColumn(tableName string) string {
    switch tableName {
    case "guest_visits":
        return "visited_at"
    case "refresh_tokens":
        return "expires_at"
    default:
        return "created_at"
    }
}

// archivableTables whitelists the tables the archive jobs may touch.
// Table names are interpolated into SQL, so anything outside this set
// is refused outright.
var archivableTables = map[string]bool{
    "audit_logs":     true,
    "guest_visits":   true,
    "refresh_tokens": true,
    "reservations":   true,
}

// ArchiveResult reports what a single archive or cleanup run did.
type ArchiveResult struct {
    TableName string    `json:"table_name"`
    Archived  int64     `json:"archived"`
    Deleted   int64     `json:"deleted"`
    Cutoff    time.Time `json:"cutoff"`
}

// ArchiveOldRows moves rows of tableName older than now−retentionDays
// into <tableName>_archive and deletes them from the source, at most
// batchSize rows per call. The copy, the delete and the audit record
// run in one transaction: a failure of any step rolls back all of them,
// so rows are never duplicated or lost across the two tables. actorID
// is nil for scheduler-triggered runs.
func (r *AuditRepo) ArchiveOldRows(ctx context.Context, tableName string, retentionDays, batchSize int, actorID *uint64) (ArchiveResult, error) {
    if !archivableTables[tableName] {
        return ArchiveResult{}, fmt.Errorf("table %q is not archivable", tableName)
    }
    if batchSize <= 0 {
        batchSize = 1000
    }
    col := cutoffColumn(tableName)
    cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return ArchiveResult{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Copy then delete by the same predicate. The INSERT..SELECT and the
    // DELETE see the same snapshot inside the transaction.
    insQ := fmt.Sprintf(
        "INSERT INTO %s_archive SELECT * FROM %s WHERE %s < ? ORDER BY %s LIMIT %d",
        tableName, tableName, col, col, batchSize)
    insRes, err := tx.ExecContext(ctx, insQ, cutoff)
    if err != nil {
        return ArchiveResult{}, err
    }
    archived, err := insRes.RowsAffected()
    if err != nil {
        return ArchiveResult{}, err
    }

    delQ := fmt.Sprintf("DELETE FROM %s WHERE %s < ? ORDER BY %s LIMIT %d",
        tableName, col, col, batchSize)
    delRes, err := tx.ExecContext(ctx, delQ, cutoff)
    if err != nil {
        return ArchiveResult{}, err
    }
    deleted, err := delRes.RowsAffected()
    if err != nil {
        return ArchiveResult{}, err
    }

    details := fmt.Sprintf(`{"archived":%d,"deleted":%d,"cutoff":%q}`,
        archived, deleted, cutoff.Format(time.RFC3339))
    if err := r.insertTx(ctx, tx, tableName, "archive", actorID, &details); err != nil {
        return ArchiveResult{}, err
    }

    if err := tx.Commit(); err != nil {
        return ArchiveResult{}, err
    }
    committed = true
    return ArchiveResult{TableName: tableName, Archived: archived, Deleted: deleted, Cutoff: cutoff}, nil
}

// DrainOldRows runs ArchiveOldRows repeatedly until a pass moves fewer
// rows than batchSize, so no rows older than the cutoff remain when it
// returns. Each pass commits its own transaction with its own audit
// record; a mid-drain failure leaves the earlier passes applied and
// returns what was moved so far alongside the error.
func (r *AuditRepo) DrainOldRows(ctx context.Context, tableName string, retentionDays, batchSize int, actorID *uint64) (ArchiveResult, error) {
    if batchSize <= 0 {
        batchSize = 1000
    }
    total := ArchiveResult{TableName: tableName}
    for {
        res, err := r.ArchiveOldRows(ctx, tableName, retentionDays, batchSize, actorID)
        total.Archived += res.Archived
        total.Deleted += res.Deleted
        total.Cutoff = res.Cutoff
        if err != nil {
            return total, err
        }
        if res.Archived < int64(batchSize) {
            return total, nil
        }
        if err := ctx.Err(); err != nil {
            return total, err
        }
    }
}

// CleanupOldRows deletes rows older than the retention cutoff without
// archiving them, for tables whose history has no value once expired.
// The delete and its audit record commit atomically.
func (r *AuditRepo) CleanupOldRows(ctx context.Context, tableName string, retentionDays, batchSize int, actorID *uint64) (ArchiveResult, error) {
    if !archivableTables[tableName] {
        return ArchiveResult{}, fmt.Errorf("table %q is not archivable", tableName)
    }
    if batchSize <= 0 {
        batchSize = 1000
    }
    col := cutoffColumn(tableName)
    cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return ArchiveResult{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    delQ := fmt.Sprintf("DELETE FROM %s WHERE %s < ? ORDER BY %s LIMIT %d",
        tableName, col, col, batchSize)
    delRes, err := tx.ExecContext(ctx, delQ, cutoff)
    if err != nil {
        return ArchiveResult{}, err
    }
    deleted, err := delRes.RowsAffected()
    if err != nil {
        return ArchiveResult{}, err
    }

    details := fmt.Sprintf(`{"deleted":%d,"cutoff":%q}`, deleted, cutoff.Format(time.RFC3339))
    if err := r.insertTx(ctx, tx, tableName, "cleanup", actorID, &details); err != nil {
        return ArchiveResult{}, err
    }

    if err := tx.Commit(); err != nil {
        return ArchiveResult{}, err
    }
    committed = true
    return ArchiveResult{TableName: tableName, Deleted: deleted, Cutoff: cutoff}, nil
}
