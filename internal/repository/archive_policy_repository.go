package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/loftalgerie/loft-api/internal/model"
)

// ErrPolicyNotFound is returned when no archive policy exists for the
// requested table.
var ErrPolicyNotFound = errors.New("archive policy not found")

// ArchivePolicyRepo persists the per-table retention policies that
// drive the archive scheduler and the admin-triggered runs.
type ArchivePolicyRepo struct{ DB *sql.DB }

func NewArchivePolicyRepo(db *sql.DB) *ArchivePolicyRepo { return &ArchivePolicyRepo{DB: db} }

const policyCols = `id, table_name, retention_days, frequency, enabled, last_run, archived_count`

// ListEnabled returns every enabled policy, the set a scheduler pass or
// an admin "run all" operates on.
func (r *ArchivePolicyRepo) ListEnabled(ctx context.Context) ([]model.ArchivePolicy, error) {
    return r.list(ctx, "SELECT "+policyCols+" FROM archive_policies WHERE enabled=1 ORDER BY table_name")
}

// ListAll returns every policy regardless of enabled state.
func (r *ArchivePolicyRepo) ListAll(ctx context.Context) ([]model.ArchivePolicy, error) {
    return r.list(ctx, "SELECT "+policyCols+" FROM archive_policies ORDER BY table_name")
}

func (r *ArchivePolicyRepo) list(ctx context.Context, query string) ([]model.ArchivePolicy, error) {
    rows, err := r.DB.QueryContext(ctx, query)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ArchivePolicy, 0)
    for rows.Next() {
        var p model.ArchivePolicy
        var lastRun sql.NullTime
        if err := rows.Scan(&p.ID, &p.TableName, &p.RetentionDays, &p.Frequency,
            &p.Enabled, &lastRun, &p.ArchivedCount); err != nil {
            return nil, err
        }
        if lastRun.Valid {
            t := lastRun.Time
            p.LastRun = &t
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// GetByTable fetches the policy governing a source table.
func (r *ArchivePolicyRepo) GetByTable(ctx context.Context, tableName string) (model.ArchivePolicy, error) {
    var p model.ArchivePolicy
    var lastRun sql.NullTime
    err := r.DB.QueryRowContext(ctx,
        "SELECT "+policyCols+" FROM archive_policies WHERE table_name=? LIMIT 1", tableName).
        Scan(&p.ID, &p.TableName, &p.RetentionDays, &p.Frequency, &p.Enabled, &lastRun, &p.ArchivedCount)
    if errors.Is(err, sql.ErrNoRows) {
        return model.ArchivePolicy{}, ErrPolicyNotFound
    }
    if err != nil {
        return model.ArchivePolicy{}, err
    }
    if lastRun.Valid {
        t := lastRun.Time
        p.LastRun = &t
    }
    return p, nil
}

// Upsert creates or replaces the policy for a table.
func (r *ArchivePolicyRepo) Upsert(ctx context.Context, p *model.ArchivePolicy) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO archive_policies (table_name, retention_days, frequency, enabled)
         VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE retention_days=VALUES(retention_days), frequency=VALUES(frequency), enabled=VALUES(enabled)`,
        p.TableName, p.RetentionDays, p.Frequency, p.Enabled)
    return err
}

// RecordRun stamps a completed run onto the policy: last_run is set to
// now and archived_count accumulates the rows moved.
func (r *ArchivePolicyRepo) RecordRun(ctx context.Context, tableName string, archived int64, at time.Time) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE archive_policies SET last_run=?, archived_count=archived_count+? WHERE table_name=?",
        at.UTC(), archived, tableName)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrPolicyNotFound
    }
    return nil
}
