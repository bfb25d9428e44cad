// Package archive runs the background retention scheduler. On a fixed
// interval it loads the enabled archive policies and moves expired rows
// into the corresponding _archive tables, batch by batch.
package archive

import (
    "context"
    "log"
    "time"

    "github.com/loftalgerie/loft-api/internal/repository"
)

// Scheduler periodically executes every enabled archive policy.
type Scheduler struct {
    Audit    *repository.AuditRepo
    Policies *repository.ArchivePolicyRepo
    Interval time.Duration
    Batch    int
}

// NewScheduler builds a scheduler. Interval defaults to one hour and
// batch size to 1000 when zero values are passed.
func NewScheduler(audit *repository.AuditRepo, policies *repository.ArchivePolicyRepo, interval time.Duration, batch int) *Scheduler {
    if audit == nil || policies == nil {
        panic("nil repository passed to NewScheduler")
    }
    if interval <= 0 {
        interval = time.Hour
    }
    if batch <= 0 {
        batch = 1000
    }
    return &Scheduler{Audit: audit, Policies: policies, Interval: interval, Batch: batch}
}

// Run blocks until ctx is cancelled, executing one pass per tick. The
// first pass runs immediately so a freshly deployed instance catches up
// without waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) {
    s.pass(ctx)
    ticker := time.NewTicker(s.Interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            s.pass(ctx)
        }
    }
}

// pass executes every enabled policy once. Errors are logged per table
// so one broken policy never blocks the others.
func (s *Scheduler) pass(ctx context.Context) {
    policies, err := s.Policies.ListEnabled(ctx)
    if err != nil {
        log.Printf("archive-scheduler: load policies failed: %v", err)
        return
    }
    for _, p := range policies {
        if !due(p.LastRun, p.Frequency, time.Now().UTC()) {
            continue
        }
        res, err := s.Audit.DrainOldRows(ctx, p.TableName, p.RetentionDays, s.Batch, nil)
        if err != nil {
            log.Printf("archive-scheduler: archive %s failed: %v", p.TableName, err)
            continue
        }
        if err := s.Policies.RecordRun(ctx, p.TableName, res.Archived, time.Now()); err != nil {
            log.Printf("archive-scheduler: record run for %s failed: %v", p.TableName, err)
            continue
        }
        if res.Archived > 0 {
            log.Printf("archive-scheduler: %s archived=%d deleted=%d cutoff=%s",
                p.TableName, res.Archived, res.Deleted, res.Cutoff.Format(time.RFC3339))
        }
    }
}

// due reports whether a policy should run now given when it last ran.
// Frequencies are coarse: "hourly", "daily" (default) and "weekly".
func due(lastRun *time.Time, frequency string, now time.Time) bool {
    if lastRun == nil {
        return true
    }
    var period time.Duration
    switch frequency {
    case "hourly":
        period = time.Hour
    case "weekly":
        period = 7 * 24 * time.Hour
    default:
        period = 24 * time.Hour
    }
    return now.Sub(*lastRun) >= period
}
