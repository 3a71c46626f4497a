package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Reservation attendance states.  Cancelled, attended and no_show are
// terminal; the only transitions out of confirmed are attended (via
// check-in) and no_show (organizer marking once the event has started).
const (
    ReservationStatusPending   = "pending"
    ReservationStatusConfirmed = "confirmed"
    ReservationStatusCancelled = "cancelled"
    ReservationStatusAttended  = "attended"
    ReservationStatusNoShow    = "no_show"
)

// Payment states tracked independently from attendance.
const (
    PaymentStatusPending   = "pending"
    PaymentStatusPaid      = "paid"
    PaymentStatusFailed    = "failed"
    PaymentStatusRefunded  = "refunded"
    PaymentStatusCancelled = "cancelled"
)

// Accepted payment methods.  Free events always record PaymentMethodFree
// regardless of what the caller supplied.
const (
    PaymentMethodCreditCard   = "credit_card"
    PaymentMethodDebitCard    = "debit_card"
    PaymentMethodPaypal       = "paypal"
    PaymentMethodBankTransfer = "bank_transfer"
    PaymentMethodCash         = "cash"
    PaymentMethodFree         = "free"
)

// Attendee is one named entry on a reservation.  A reservation carries
// at least one attendee and exactly NumberOfAttendees entries.
//
// Fields:
//  ID                  – primary key of the reservation_attendees row.
//  ReservationID       – reference to the owning reservation.
//  Name                – attendee's display name.
//  Email               – contact email, stored lowercase.
//  Phone               – optional contact phone.
//  Age                 – optional age.
//  DietaryRestrictions – optional free-form dietary notes.
//  SpecialRequirements – optional free-form accessibility notes.
type Attendee struct {
    ID                  uint64 `json:"id"`
    ReservationID       uint64 `json:"reservation_id"`
    Name                string `json:"name"`
    Email               string `json:"email"`
    Phone               string `json:"phone,omitempty"`
    Age                 *int   `json:"age,omitempty"`
    DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
    SpecialRequirements string `json:"special_requirements,omitempty"`
}

// Cancellation records who cancelled a reservation, when, and why.
// Present only on reservations in the cancelled state.
type Cancellation struct {
    CancelledAt time.Time `json:"cancelled_at"`
    CancelledBy uint64    `json:"cancelled_by"`
    Reason      string    `json:"reason,omitempty"`
}

// Reservation is a booking of one or more seats against an Event by a
// single user.  Capacity on the event is reserved at creation time
// (hold-at-booking); confirming payment has no capacity side effect.
// Reservations are never deleted — cancellation is a soft state.
//
// Fields:
//  ID                   – primary key identifier.
//  EventID              – event being booked.
//  UserID               – user who made the reservation.
//  Code                 – unique human-presentable reservation code,
//                         uppercase [A-Z0-9], 8 characters by default.
//  NumberOfAttendees    – seat count, always equal to len(Attendees).
//  TotalAmount          – price * attendees computed at creation; zero
//                         for free events.
//  PaymentStatus        – one of the PaymentStatus* constants.
//  PaymentMethod        – one of the PaymentMethod* constants.
//  PaymentTransactionID – external transaction reference, if paid.
//  PaymentDate          – when payment was confirmed.
//  Status               – one of the ReservationStatus* constants.
//  CheckInTime          – when the organizer checked the party in.
//  Cancellation         – cancellation metadata, nil unless cancelled.
//  UserNotes            – free-form notes supplied by the booking user.
//  AdminNotes           – free-form notes supplied by the organizer.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Reservation struct {
    ID                   uint64          `json:"id"`
    EventID              uint64          `json:"event_id"`
    UserID               uint64          `json:"user_id"`
    Code                 string          `json:"reservation_code"`
    Attendees            []Attendee      `json:"attendees"`
    NumberOfAttendees    int             `json:"number_of_attendees"`
    TotalAmount          decimal.Decimal `json:"total_amount"`
    PaymentStatus        string          `json:"payment_status"`
    PaymentMethod        string          `json:"payment_method"`
    PaymentTransactionID *string         `json:"payment_transaction_id,omitempty"`
    PaymentDate          *time.Time      `json:"payment_date,omitempty"`
    Status               string          `json:"status"`
    CheckInTime          *time.Time      `json:"check_in_time,omitempty"`
    Cancellation         *Cancellation   `json:"cancellation,omitempty"`
    UserNotes            string          `json:"user_notes,omitempty"`
    AdminNotes           string          `json:"admin_notes,omitempty"`
    CreatedAt            time.Time       `json:"created_at"`
    UpdatedAt            time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the reservation is in a state that admits
// no further transitions.
func (r *Reservation) IsTerminal() bool {
    switch r.Status {
    case ReservationStatusCancelled, ReservationStatusAttended, ReservationStatusNoShow:
        return true
    }
    return false
}

// ValidPaymentMethod reports whether m is one of the accepted payment
// method values.
func ValidPaymentMethod(m string) bool {
    switch m {
    case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPaypal,
        PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodFree:
        return true
    }
    return false
}
