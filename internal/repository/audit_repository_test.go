package repository

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/loftalgerie/loft-api/internal/model"
)

func newAuditMock(t *testing.T) (*AuditRepo, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    return NewAuditRepo(db), mock, func() { db.Close() }
}

func auditRows() *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "table_name", "action", "actor_id", "details", "created_at"}).
        AddRow(1, "partners", "approve", 2, `{"partner_id":9}`, time.Now())
}

func TestListForRoleForbidden(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    _, err := repo.ListForRole(context.Background(), model.RoleClient, 10)
    if !errors.Is(err, ErrForbidden) {
        t.Fatalf("err = %v, want ErrForbidden", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestListForRoleAdminSeesDetails(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectQuery(`SELECT id, table_name, action, actor_id, details, created_at FROM audit_logs`).
        WillReturnRows(auditRows())

    items, err := repo.ListForRole(context.Background(), model.RoleAdmin, 10)
    if err != nil {
        t.Fatalf("ListForRole: %v", err)
    }
    if len(items) != 1 {
        t.Fatalf("len = %d, want 1", len(items))
    }
    if items[0].Details == nil || *items[0].Details != `{"partner_id":9}` {
        t.Errorf("admin should see details, got %v", items[0].Details)
    }
}

func TestListForRoleManagerRedacted(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectQuery(`SELECT id, table_name, action, actor_id, details, created_at FROM audit_logs`).
        WillReturnRows(auditRows())

    items, err := repo.ListForRole(context.Background(), model.RoleManager, 10)
    if err != nil {
        t.Fatalf("ListForRole: %v", err)
    }
    if len(items) != 1 {
        t.Fatalf("len = %d, want 1", len(items))
    }
    if items[0].Details != nil {
        t.Errorf("manager should not see details, got %q", *items[0].Details)
    }
    if items[0].TableName != "partners" || items[0].Action != "approve" {
        t.Errorf("non-detail fields should survive redaction: %+v", items[0])
    }
}

func TestCutoffColumn(t *testing.T) {
    cases := map[string]string{
        "audit_logs":     "created_at",
        "reservations":   "created_at",
        "guest_visits":   "visited_at",
        "refresh_tokens": "expires_at",
    }
    for table, want := range cases {
        if got := cutoffColumn(table); got != want {
            t.Errorf("cutoffColumn(%q) = %q, want %q", table, got, want)
        }
    }
}

func TestArchiveOldRowsRefusesUnknownTable(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    if _, err := repo.ArchiveOldRows(context.Background(), "users", 30, 100, nil); err == nil {
        t.Fatal("expected error for non-archivable table")
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestArchiveOldRowsAtomic(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO audit_logs_archive SELECT \* FROM audit_logs WHERE created_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 7))
    mock.ExpectExec(`DELETE FROM audit_logs WHERE created_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 7))
    mock.ExpectExec(`INSERT INTO audit_logs \(table_name, action, actor_id, details\)`).
        WillReturnResult(sqlmock.NewResult(99, 1))
    mock.ExpectCommit()

    res, err := repo.ArchiveOldRows(context.Background(), "audit_logs", 90, 1000, nil)
    if err != nil {
        t.Fatalf("ArchiveOldRows: %v", err)
    }
    if res.Archived != 7 || res.Deleted != 7 {
        t.Errorf("result = %+v, want 7 archived and deleted", res)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestArchiveOldRowsRollsBackOnDeleteFailure(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO reservations_archive SELECT \* FROM reservations WHERE created_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 3))
    mock.ExpectExec(`DELETE FROM reservations WHERE created_at < \?`).
        WillReturnError(errors.New("lock wait timeout"))
    mock.ExpectRollback()

    if _, err := repo.ArchiveOldRows(context.Background(), "reservations", 365, 1000, nil); err == nil {
        t.Fatal("expected delete failure to surface")
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestDrainOldRowsRunsUntilShortBatch(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    // First pass fills the batch, so a second pass must follow; the
    // second moves fewer rows than the batch size and ends the drain.
    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO guest_visits_archive SELECT \* FROM guest_visits WHERE visited_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec(`DELETE FROM guest_visits WHERE visited_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec(`INSERT INTO audit_logs \(table_name, action, actor_id, details\)`).
        WillReturnResult(sqlmock.NewResult(101, 1))
    mock.ExpectCommit()

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO guest_visits_archive SELECT \* FROM guest_visits WHERE visited_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(`DELETE FROM guest_visits WHERE visited_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(`INSERT INTO audit_logs \(table_name, action, actor_id, details\)`).
        WillReturnResult(sqlmock.NewResult(102, 1))
    mock.ExpectCommit()

    res, err := repo.DrainOldRows(context.Background(), "guest_visits", 30, 2, nil)
    if err != nil {
        t.Fatalf("DrainOldRows: %v", err)
    }
    if res.Archived != 3 || res.Deleted != 3 {
        t.Errorf("result = %+v, want 3 archived and deleted across passes", res)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestDrainOldRowsStopsImmediatelyWhenEmpty(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO audit_logs_archive SELECT \* FROM audit_logs WHERE created_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(`DELETE FROM audit_logs WHERE created_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectExec(`INSERT INTO audit_logs \(table_name, action, actor_id, details\)`).
        WillReturnResult(sqlmock.NewResult(103, 1))
    mock.ExpectCommit()

    res, err := repo.DrainOldRows(context.Background(), "audit_logs", 90, 500, nil)
    if err != nil {
        t.Fatalf("DrainOldRows: %v", err)
    }
    if res.Archived != 0 {
        t.Errorf("archived = %d, want 0", res.Archived)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestCleanupOldRowsUsesExpiryColumn(t *testing.T) {
    repo, mock, done := newAuditMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < \?`).
        WillReturnResult(sqlmock.NewResult(0, 12))
    mock.ExpectExec(`INSERT INTO audit_logs \(table_name, action, actor_id, details\)`).
        WillReturnResult(sqlmock.NewResult(100, 1))
    mock.ExpectCommit()

    res, err := repo.CleanupOldRows(context.Background(), "refresh_tokens", 0, 1000, nil)
    if err != nil {
        t.Fatalf("CleanupOldRows: %v", err)
    }
    if res.Deleted != 12 {
        t.Errorf("deleted = %d, want 12", res.Deleted)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}
