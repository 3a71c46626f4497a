// Package repository defines error types that are reused across multiple
// repositories and the service layer. These sentinel values allow higher
// layers such as handlers to distinguish between different failure
// scenarios with errors.Is, while services attach human-readable detail
// by wrapping them with fmt.Errorf("%w: ...").
package repository

import "errors"

// ErrEventNotFound is returned when a referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrReservationNotFound is returned when a referenced reservation does
// not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrUserNotFound is returned when a referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering with an email address
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. cancelling another user's reservation
// or checking in an attendee of another organizer's event. Handlers
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when an operation is not permitted from
// the entity's current state, such as booking a draft event, cancelling
// an attended reservation, or checking in a reservation that has not
// been confirmed.
var ErrInvalidState = errors.New("invalid state")

// ErrDeadlinePassed is returned when a reservation is attempted after
// the event's registration deadline has elapsed.
var ErrDeadlinePassed = errors.New("registration deadline has passed")

// ErrCapacityExceeded is returned when an event does not have enough
// remaining seats for the requested number of attendees.
var ErrCapacityExceeded = errors.New("not enough available spots")

// ErrAlreadyCancelled guards double-cancellation: cancelling a
// reservation that is already cancelled fails with this error and never
// decrements event capacity a second time.
var ErrAlreadyCancelled = errors.New("reservation is already cancelled")

// ErrCodeExhausted is returned when the reservation code generator
// exceeds its retry bound without finding a collision-free code.
var ErrCodeExhausted = errors.New("reservation code space exhausted")

// ErrConflict is returned when a concurrent mutation is detected, e.g.
// a cancel and a check-in racing on the same reservation. Exactly one
// of the racing callers wins; the loser observes this error. Handlers
// translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrValidation is returned for payloads that fail structural business
// checks inside the service layer, such as an attendee list whose
// length does not match number_of_attendees.
var ErrValidation = errors.New("invalid payload")
