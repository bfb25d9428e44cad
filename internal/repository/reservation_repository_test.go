package repository

import (
    "context"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/loftalgerie/loft-api/internal/booking"
    "github.com/loftalgerie/loft-api/internal/model"
)

func newMock(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock, func()) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    return NewReservationRepo(db), mock, func() { db.Close() }
}

func testRecord() *ReservationRecord {
    uid := uint64(5)
    return &ReservationRecord{
        LoftID:      3,
        UserID:      &uid,
        GuestName:   "Amine B",
        GuestEmail:  "amine@example.com",
        CheckIn:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
        CheckOut:    time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
        Status:      model.ReservationPending,
        TotalAmount: 17500,
    }
}

const insertRe = `INSERT INTO reservations`

func TestCreateTxRetriesOnDuplicateKey(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    // First attempt collides on the unique index, second succeeds.
    mock.ExpectExec(insertRe).
        WillReturnError(errors.New("Error 1062: Duplicate entry 'LA-20260701-0001' for key 'booking_reference'"))
    mock.ExpectExec(insertRe).
        WillReturnResult(sqlmock.NewResult(42, 1))
    now := time.Now()
    mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM reservations WHERE id = ?")).
        WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
    mock.ExpectCommit()

    tx, err := repo.DB().Begin()
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    rec := testRecord()
    if err := repo.CreateTx(context.Background(), tx, rec); err != nil {
        t.Fatalf("CreateTx: %v", err)
    }
    if err := tx.Commit(); err != nil {
        t.Fatalf("commit: %v", err)
    }

    if rec.ID != 42 {
        t.Errorf("ID = %d, want 42", rec.ID)
    }
    if !booking.ValidReference(rec.BookingReference) {
        t.Errorf("invalid booking reference %q", rec.BookingReference)
    }
    if !booking.ValidConfirmationCode(rec.ConfirmationCode) {
        t.Errorf("invalid confirmation code %q", rec.ConfirmationCode)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestCreateTxExhaustsAttempts(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    for i := 0; i < booking.MaxAttempts; i++ {
        mock.ExpectExec(insertRe).
            WillReturnError(errors.New("Error 1062: Duplicate entry"))
    }
    mock.ExpectRollback()

    tx, err := repo.DB().Begin()
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    err = repo.CreateTx(context.Background(), tx, testRecord())
    if !errors.Is(err, booking.ErrReferenceExhausted) {
        t.Fatalf("err = %v, want ErrReferenceExhausted", err)
    }
    _ = tx.Rollback()
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestCreateTxPropagatesOtherErrors(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectBegin()
    mock.ExpectExec(insertRe).
        WillReturnError(errors.New("Error 1213: Deadlock found"))
    mock.ExpectRollback()

    tx, err := repo.DB().Begin()
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    err = repo.CreateTx(context.Background(), tx, testRecord())
    if err == nil || errors.Is(err, booking.ErrReferenceExhausted) {
        t.Fatalf("err = %v, want deadlock error passed through", err)
    }
    _ = tx.Rollback()
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestOverlapExistsTx(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    checkIn := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
    checkOut := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)

    mock.ExpectBegin()
    mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
        WithArgs(uint64(3), checkOut, checkIn).
        WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
    mock.ExpectRollback()

    tx, err := repo.DB().Begin()
    if err != nil {
        t.Fatalf("begin: %v", err)
    }
    taken, err := repo.OverlapExistsTx(context.Background(), tx, 3, checkIn, checkOut)
    if err != nil {
        t.Fatalf("OverlapExistsTx: %v", err)
    }
    if !taken {
        t.Error("expected overlap to be reported")
    }
    _ = tx.Rollback()
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestUpdateStatusGuards(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    // Transition touches no rows and the reservation exists: conflict.
    mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status=? WHERE id=? AND status IN (?)")).
        WithArgs(model.ReservationConfirmed, uint64(9), model.ReservationPending).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM reservations WHERE id=? LIMIT 1")).
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

    err := repo.UpdateStatus(context.Background(), 9,
        []string{model.ReservationPending}, model.ReservationConfirmed)
    if !errors.Is(err, ErrConflict) {
        t.Fatalf("err = %v, want ErrConflict", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestGetByReferenceWrongCode(t *testing.T) {
    repo, mock, done := newMock(t)
    defer done()

    mock.ExpectQuery(`SELECT .+ FROM reservations WHERE booking_reference=\? AND confirmation_code=\?`).
        WithArgs("LA-20260701-0042", "WRONG0").
        WillReturnRows(sqlmock.NewRows([]string{"id"}))

    _, err := repo.GetByReference(context.Background(), "LA-20260701-0042", "WRONG0")
    if !errors.Is(err, ErrReservationNotFound) {
        t.Fatalf("err = %v, want ErrReservationNotFound", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}
