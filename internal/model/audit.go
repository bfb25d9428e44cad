package model

import "time"

// AuditLog is an append-only record of a sensitive action performed
// against a table.  Rows are never updated; retention is handled by the
// archive jobs.  Visibility of rows is governed by role: admins see all
// fields, managers see entries without Details, other roles see nothing.
//
// Fields:
//  ID        – primary key identifier.
//  TableName – table the action touched (e.g. "partners", "reservations").
//  Action    – short verb describing what happened ("approve", "archive").
//  ActorID   – user who performed the action (nil for system jobs).
//  Details   – free-form JSON payload with the specifics.
//  CreatedAt – when the action happened.
type AuditLog struct {
    ID        uint64    // audit_logs.id
    TableName string    // audit_logs.table_name
    Action    string    // audit_logs.action
    ActorID   *uint64   // audit_logs.actor_id (nullable)
    Details   *string   // audit_logs.details (nullable)
    CreatedAt time.Time // audit_logs.created_at
}

// ArchivePolicy drives the periodic move-and-delete of old rows from a
// source table into its `<table>_archive` counterpart.  One row per
// source table in the `archive_policies` table.
//
// Fields:
//  ID            – primary key identifier.
//  TableName     – source table governed by this policy.
//  RetentionDays – rows strictly older than now−RetentionDays are archived.
//  Frequency     – how often the scheduler runs this policy (e.g. "daily").
//  Enabled       – disabled policies are skipped by runs.
//  LastRun       – when the policy last executed (nil if never).
//  ArchivedCount – cumulative number of rows archived by this policy.
type ArchivePolicy struct {
    ID            uint64     // archive_policies.id
    TableName     string     // archive_policies.table_name
    RetentionDays int        // archive_policies.retention_days
    Frequency     string     // archive_policies.frequency
    Enabled       bool       // archive_policies.enabled
    LastRun       *time.Time // archive_policies.last_run (nullable)
    ArchivedCount uint64     // archive_policies.archived_count
}
