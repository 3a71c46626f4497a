package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Event lifecycle states.  Only published events accept reservations.
const (
    EventStatusDraft     = "draft"
    EventStatusPublished = "published"
    EventStatusCancelled = "cancelled"
    EventStatusCompleted = "completed"
)

// Pricing types.  Free events always produce zero-amount reservations.
const (
    PricingFree = "free"
    PricingPaid = "paid"
)

// Event represents a bookable occurrence with a seat ceiling and a
// registration window.  MaxAttendees is the immutable business ceiling;
// CurrentAttendees is mutated exclusively through the reservation
// lifecycle using conditional updates so that
// 0 <= CurrentAttendees <= MaxAttendees holds after every committed
// operation.
//
// Fields:
//  ID                   – primary key identifier.
//  OrganizerID          – user who owns and manages the event.
//  Title                – display title.
//  Description          – longer description shown to attendees.
//  Status               – one of the EventStatus* constants.
//  PricingType          – PricingFree or PricingPaid.
//  PriceAmount          – per-attendee price; zero for free events.
//  PriceCurrency        – ISO 4217 code, e.g. "USD".
//  StartsAt             – when the event begins.
//  EndsAt               – when the event ends.
//  RegistrationDeadline – last moment a reservation may be created.
//  MaxAttendees         – seat ceiling.
//  CurrentAttendees     – seats booked by non-cancelled reservations.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Event struct {
    ID                   uint64          `json:"id"`
    OrganizerID          uint64          `json:"organizer_id"`
    Title                string          `json:"title"`
    Description          string          `json:"description"`
    Status               string          `json:"status"`
    PricingType          string          `json:"pricing_type"`
    PriceAmount          decimal.Decimal `json:"price_amount"`
    PriceCurrency        string          `json:"price_currency"`
    StartsAt             time.Time       `json:"starts_at"`
    EndsAt               time.Time       `json:"ends_at"`
    RegistrationDeadline time.Time       `json:"registration_deadline"`
    MaxAttendees         int             `json:"max_attendees"`
    CurrentAttendees     int             `json:"current_attendees"`
    CreatedAt            time.Time       `json:"created_at"`
    UpdatedAt            time.Time       `json:"updated_at"`
}

// IsFree reports whether the event charges nothing per attendee.
func (e *Event) IsFree() bool { return e.PricingType != PricingPaid }

// AvailableSpots returns the number of seats still open for booking.
func (e *Event) AvailableSpots() int { return e.MaxAttendees - e.CurrentAttendees }
