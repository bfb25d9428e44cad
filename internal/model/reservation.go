package model

import "time"

// Reservation status values.  A reservation starts PENDING and moves to
// CONFIRMED on payment/confirmation or CANCELLED when withdrawn before
// check-in.
const (
    ReservationPending   = "PENDING"
    ReservationConfirmed = "CONFIRMED"
    ReservationCancelled = "CANCELLED"
)

// Reservation records a guest's booking of a loft for a date range.  The
// booking reference and confirmation code are the human-shareable
// identifiers, distinct from the database id, and both carry unique
// indexes in the `reservations` table.
//
// Fields:
//  ID               – primary key identifier.
//  BookingReference – unique reference in the form LA-YYYYMMDD-NNNN.
//  ConfirmationCode – unique 6-character uppercase alphanumeric code.
//  LoftID           – loft being booked.
//  UserID           – account that placed the booking (nil for guest checkout).
//  GuestName        – name of the lead guest.
//  GuestEmail       – contact email for the booking.
//  CheckIn          – first night (date, UTC midnight).
//  CheckOut         – departure date; strictly after CheckIn.
//  Status           – PENDING, CONFIRMED or CANCELLED.
//  TotalAmount      – total price in DZD (base*nights + cleaning + tax).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
    ID               uint64    // reservations.id
    BookingReference string    // reservations.booking_reference
    ConfirmationCode string    // reservations.confirmation_code
    LoftID           uint64    // reservations.loft_id
    UserID           *uint64   // reservations.user_id (nullable)
    GuestName        string    // reservations.guest_name
    GuestEmail       string    // reservations.guest_email
    CheckIn          time.Time // reservations.check_in
    CheckOut         time.Time // reservations.check_out
    Status           string    // reservations.status
    TotalAmount      uint64    // reservations.total_amount
    CreatedAt        time.Time // reservations.created_at
    UpdatedAt        time.Time // reservations.updated_at
}
