package repository

import (
    "context"
    "errors"
    "regexp"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/loftalgerie/loft-api/internal/model"
)

func newPartnerMock(t *testing.T) (*PartnerRepo, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    return NewPartnerRepo(db), mock, func() { db.Close() }
}

func TestCreateSecondProfileConflicts(t *testing.T) {
    repo, mock, done := newPartnerMock(t)
    defer done()

    mock.ExpectExec(`INSERT INTO partners`).
        WithArgs(uint64(7), "Loft Hydra", model.PartnerPending).
        WillReturnError(errors.New("Error 1062: Duplicate entry '7' for key 'user_id'"))

    _, err := repo.Create(context.Background(), 7, "Loft Hydra")
    if !errors.Is(err, ErrPartnerExists) {
        t.Fatalf("err = %v, want ErrPartnerExists", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestApprovePending(t *testing.T) {
    repo, mock, done := newPartnerMock(t)
    defer done()

    mock.ExpectExec(regexp.QuoteMeta("UPDATE partners SET verification_status=?, approved_by=?, rejected_by=NULL WHERE id=? AND verification_status=?")).
        WithArgs(model.PartnerActive, uint64(2), uint64(9), model.PartnerPending).
        WillReturnResult(sqlmock.NewResult(0, 1))

    if err := repo.Approve(context.Background(), 9, 2); err != nil {
        t.Fatalf("Approve: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestApproveWrongStateConflicts(t *testing.T) {
    repo, mock, done := newPartnerMock(t)
    defer done()

    // Guarded update touches nothing, but the partner exists.
    mock.ExpectExec(`UPDATE partners SET`).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM partners WHERE id=? LIMIT 1")).
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

    err := repo.Approve(context.Background(), 9, 2)
    if !errors.Is(err, ErrConflict) {
        t.Fatalf("err = %v, want ErrConflict", err)
    }
}

func TestApproveMissingPartner(t *testing.T) {
    repo, mock, done := newPartnerMock(t)
    defer done()

    mock.ExpectExec(`UPDATE partners SET`).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM partners WHERE id=? LIMIT 1")).
        WithArgs(uint64(404)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}))

    err := repo.Approve(context.Background(), 404, 2)
    if !errors.Is(err, ErrPartnerNotFound) {
        t.Fatalf("err = %v, want ErrPartnerNotFound", err)
    }
}

func TestGetByUserIDMissing(t *testing.T) {
    repo, mock, done := newPartnerMock(t)
    defer done()

    mock.ExpectQuery(`SELECT .+ FROM partners WHERE user_id=\?`).
        WithArgs(uint64(55)).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))

    _, err := repo.GetByUserID(context.Background(), 55)
    if !errors.Is(err, ErrPartnerNotFound) {
        t.Fatalf("err = %v, want ErrPartnerNotFound", err)
    }
}
