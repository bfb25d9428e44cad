// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is successfully
// confirmed. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
    ReservationID    uint64 `json:"reservation_id"`
    BookingReference string `json:"booking_reference"`
    LoftID           uint64 `json:"loft_id"`
    LoftName         string `json:"loft_name"`
    GuestName        string `json:"guest_name"`
    CheckIn          string `json:"check_in"`
    CheckOut         string `json:"check_out"`
    TotalAmount      uint64 `json:"total_amount"`
    ConfirmedAt      string `json:"confirmed_at"`
}
