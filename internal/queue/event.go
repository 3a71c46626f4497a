// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer that move them.
package queue

// Queue names used on the default exchange.  Both are declared durable.
const (
    ReservationConfirmedQueue = "reservation.confirmed"
    ReservationCancelledQueue = "reservation.cancelled"
)

// ReservationConfirmedEvent is published when a reservation's payment is
// confirmed.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.  MessageID is a UUID assigned at publish time.
type ReservationConfirmedEvent struct {
    MessageID         string `json:"message_id"`
    ReservationID     uint64 `json:"reservation_id"`
    ReservationCode   string `json:"reservation_code"`
    EventID           uint64 `json:"event_id"`
    EventTitle        string `json:"event_title"`
    UserID            uint64 `json:"user_id"`
    NumberOfAttendees int    `json:"number_of_attendees"`
    TotalAmount       string `json:"total_amount"`
    Currency          string `json:"currency"`
    ConfirmedAt       string `json:"confirmed_at"`
}

// ReservationCancelledEvent is published when a reservation is cancelled
// and its seats are released back to the event.
type ReservationCancelledEvent struct {
    MessageID       string `json:"message_id"`
    ReservationID   uint64 `json:"reservation_id"`
    ReservationCode string `json:"reservation_code"`
    EventID         uint64 `json:"event_id"`
    UserID          uint64 `json:"user_id"`
    CancelledBy     uint64 `json:"cancelled_by"`
    Reason          string `json:"reason,omitempty"`
    SpotsReleased   int    `json:"spots_released"`
    CancelledAt     string `json:"cancelled_at"`
}
