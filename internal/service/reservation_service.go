package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/event-reservation/internal/model"
    "github.com/iliyamo/event-reservation/internal/monitoring"
    "github.com/iliyamo/event-reservation/internal/queue"
    "github.com/iliyamo/event-reservation/internal/repository"
)

// EventStore is the read side of event records the lifecycle depends
// on.  Capacity mutation happens inside ReservationStore.Create and
// MarkCancelled, paired atomically with the reservation write.
// Satisfied by repository.EventRepo.
type EventStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// ReservationStore is the persistence abstraction the lifecycle drives.
// Implementations must provide at-most-one-committer semantics for
// every state transition: Create commits the capacity increment only
// when it fits under max_attendees, and the Mark* methods apply only
// from the expected current status, returning repository.ErrConflict
// otherwise.  Satisfied by repository.ReservationRepo.
type ReservationStore interface {
    CodeChecker
    Create(ctx context.Context, res *model.Reservation) error
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    GetByCode(ctx context.Context, code string) (*model.Reservation, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
    ListByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error)
    MarkCancelled(ctx context.Context, res *model.Reservation, cancelledBy uint64, reason string) (clamped bool, err error)
    MarkPaid(ctx context.Context, id uint64, transactionID string, paidAt time.Time) error
    MarkAttended(ctx context.Context, id uint64, at time.Time) error
    MarkNoShow(ctx context.Context, id uint64) error
    UpdateDetails(ctx context.Context, res *model.Reservation) error
}

// Publisher delivers lifecycle events to the message broker.  Delivery
// is best-effort: errors are logged, never surfaced to the booking
// user.  A nil Publisher disables publishing.
type Publisher interface {
    PublishReservationConfirmed(ctx context.Context, event queue.ReservationConfirmedEvent) error
    PublishReservationCancelled(ctx context.Context, event queue.ReservationCancelledEvent) error
}

// ReservationService enforces all booking invariants.  It is the only
// component permitted to mutate event attendee counts, always through
// the store's conditional updates, and it keeps the cross-entity
// invariant that the attendee sum over non-cancelled reservations for
// an event equals that event's current_attendees.
type ReservationService struct {
    events       EventStore
    reservations ReservationStore
    codes        *CodeGenerator
    publisher    Publisher
    now          func() time.Time
}

// NewReservationService wires the lifecycle manager.  publisher may be
// nil when no broker is configured.
func NewReservationService(events EventStore, reservations ReservationStore, codes *CodeGenerator, publisher Publisher) *ReservationService {
    return &ReservationService{
        events:       events,
        reservations: reservations,
        codes:        codes,
        publisher:    publisher,
        now:          func() time.Time { return time.Now().UTC() },
    }
}

// CreateReservationInput carries everything a booking needs besides the
// authenticated actor.  The attendee list must contain exactly
// NumberOfAttendees entries.
type CreateReservationInput struct {
    EventID           uint64           `json:"event_id"`
    Attendees         []model.Attendee `json:"attendees"`
    NumberOfAttendees int              `json:"number_of_attendees"`
    PaymentMethod     string           `json:"payment_method"`
    UserNotes         string           `json:"notes"`
}

// createConflictRetries bounds retries when the generated code loses
// the probe-to-insert race against another booking.
const createConflictRetries = 2

// CreateReservation books seats on an event for the given user.
// Preconditions are checked in order, each with its own failure kind:
// the event must exist, be published, have an open registration window
// and enough remaining capacity.  The capacity check here is a
// fast-path courtesy; the authoritative check-and-increment happens
// inside the store transaction so two concurrent bookings of the last
// seat can never both commit.  Free events force payment method "free"
// and a zero total regardless of what the caller supplied.
func (s *ReservationService) CreateReservation(ctx context.Context, userID uint64, in CreateReservationInput) (*model.Reservation, error) {
    if in.NumberOfAttendees < 1 {
        return nil, fmt.Errorf("%w: at least one attendee is required", repository.ErrValidation)
    }
    if len(in.Attendees) != in.NumberOfAttendees {
        return nil, fmt.Errorf("%w: attendee entries (%d) must match number_of_attendees (%d)",
            repository.ErrValidation, len(in.Attendees), in.NumberOfAttendees)
    }

    event, err := s.events.GetByID(ctx, in.EventID)
    if err != nil {
        return nil, err
    }
    if event.Status != model.EventStatusPublished {
        return nil, fmt.Errorf("%w: event is not open for registration", repository.ErrInvalidState)
    }
    if s.now().After(event.RegistrationDeadline) {
        return nil, repository.ErrDeadlinePassed
    }
    if event.CurrentAttendees+in.NumberOfAttendees > event.MaxAttendees {
        monitoring.CapacityRejected(event.ID)
        return nil, repository.ErrCapacityExceeded
    }

    total := decimal.Zero
    method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
    if event.IsFree() {
        method = model.PaymentMethodFree
    } else {
        total = event.PriceAmount.Mul(decimal.NewFromInt(int64(in.NumberOfAttendees)))
        if !model.ValidPaymentMethod(method) || method == model.PaymentMethodFree {
            return nil, fmt.Errorf("%w: a payment method is required for paid events", repository.ErrValidation)
        }
    }

    for attempt := 0; ; attempt++ {
        code, err := s.codes.Generate(ctx)
        if err != nil {
            return nil, err
        }
        res := &model.Reservation{
            EventID:           event.ID,
            UserID:            userID,
            Code:              code,
            Attendees:         in.Attendees,
            NumberOfAttendees: in.NumberOfAttendees,
            TotalAmount:       total,
            PaymentStatus:     model.PaymentStatusPending,
            PaymentMethod:     method,
            Status:            model.ReservationStatusPending,
            UserNotes:         in.UserNotes,
        }
        err = s.reservations.Create(ctx, res)
        if err == nil {
            monitoring.ReservationCreated(event.ID)
            return res, nil
        }
        if errors.Is(err, repository.ErrCapacityExceeded) {
            monitoring.CapacityRejected(event.ID)
            return nil, err
        }
        if errors.Is(err, repository.ErrConflict) && attempt < createConflictRetries {
            // Lost the code uniqueness race; try again with a new code.
            continue
        }
        return nil, err
    }
}

// CancelReservation soft-cancels a reservation on behalf of its owning
// user and releases the booked seats.  Cancelling twice fails with
// ErrAlreadyCancelled and never decrements capacity a second time;
// attended and no-show reservations cannot be cancelled at all.  Only
// the booking user may cancel — organizers mark no-shows instead.
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID, actorID uint64, reason string) error {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return err
    }
    if res.UserID != actorID {
        return fmt.Errorf("%w: not authorized to cancel this reservation", repository.ErrForbidden)
    }
    switch res.Status {
    case model.ReservationStatusCancelled:
        return repository.ErrAlreadyCancelled
    case model.ReservationStatusAttended:
        return fmt.Errorf("%w: cannot cancel an attended reservation", repository.ErrInvalidState)
    case model.ReservationStatusNoShow:
        return fmt.Errorf("%w: cannot cancel a no-show reservation", repository.ErrInvalidState)
    }

    clamped, err := s.reservations.MarkCancelled(ctx, res, actorID, reason)
    if err != nil {
        return err
    }
    if clamped {
        // The books were already off before this cancel; flag it loudly.
        log.Printf("reservation: attendee count clamped at zero for event %d while cancelling reservation %d", res.EventID, res.ID)
        monitoring.CapacityClamped()
    }
    monitoring.ReservationCancelled(res.EventID)

    if s.publisher != nil {
        evt := queue.ReservationCancelledEvent{
            ReservationID:   res.ID,
            ReservationCode: res.Code,
            EventID:         res.EventID,
            UserID:          res.UserID,
            CancelledBy:     actorID,
            Reason:          reason,
            SpotsReleased:   res.NumberOfAttendees,
            CancelledAt:     s.now().Format(time.RFC3339),
        }
        if err := s.publisher.PublishReservationCancelled(ctx, evt); err != nil {
            log.Printf("reservation: publish cancelled event failed: %v", err)
        }
    }
    return nil
}

// ConfirmPayment marks a reservation as paid and confirmed, stamping
// the payment date and the caller-supplied transaction reference.
// Capacity is untouched — the seats were reserved at booking time.
// Terminal reservations are rejected.
func (s *ReservationService) ConfirmPayment(ctx context.Context, reservationID uint64, transactionID string) error {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return err
    }
    if res.IsTerminal() {
        return fmt.Errorf("%w: cannot confirm payment on a %s reservation", repository.ErrInvalidState, res.Status)
    }
    paidAt := s.now()
    if err := s.reservations.MarkPaid(ctx, reservationID, transactionID, paidAt); err != nil {
        return err
    }

    if s.publisher != nil {
        event, err := s.events.GetByID(ctx, res.EventID)
        if err != nil {
            log.Printf("reservation: load event %d for confirmed publish failed: %v", res.EventID, err)
            return nil
        }
        evt := queue.ReservationConfirmedEvent{
            ReservationID:     res.ID,
            ReservationCode:   res.Code,
            EventID:           event.ID,
            EventTitle:        event.Title,
            UserID:            res.UserID,
            NumberOfAttendees: res.NumberOfAttendees,
            TotalAmount:       res.TotalAmount.String(),
            Currency:          event.PriceCurrency,
            ConfirmedAt:       paidAt.Format(time.RFC3339),
        }
        if err := s.publisher.PublishReservationConfirmed(ctx, evt); err != nil {
            log.Printf("reservation: publish confirmed event failed: %v", err)
        }
    }
    return nil
}

// CheckIn transitions a confirmed reservation to attended on behalf of
// the event's organizer and stamps the check-in time.  A cancel racing
// with this check-in is serialized by the store's conditional update:
// one caller wins, the other observes a conflict.
func (s *ReservationService) CheckIn(ctx context.Context, reservationID, organizerID uint64) error {
    res, event, err := s.getForOrganizer(ctx, reservationID, organizerID)
    if err != nil {
        return err
    }
    if res.Status != model.ReservationStatusConfirmed {
        return fmt.Errorf("%w: reservation must be confirmed before check-in", repository.ErrInvalidState)
    }
    if err := s.reservations.MarkAttended(ctx, reservationID, s.now()); err != nil {
        return err
    }
    monitoring.CheckedIn(event.ID)
    return nil
}

// MarkNoShow records that a confirmed party never arrived.  Only the
// event's organizer may mark it, and only once the event has started.
// Capacity is not released: the seats were consumed by the booking.
func (s *ReservationService) MarkNoShow(ctx context.Context, reservationID, organizerID uint64) error {
    res, event, err := s.getForOrganizer(ctx, reservationID, organizerID)
    if err != nil {
        return err
    }
    if res.Status != model.ReservationStatusConfirmed {
        return fmt.Errorf("%w: only confirmed reservations can be marked no-show", repository.ErrInvalidState)
    }
    if s.now().Before(event.StartsAt) {
        return fmt.Errorf("%w: event has not started yet", repository.ErrInvalidState)
    }
    return s.reservations.MarkNoShow(ctx, reservationID)
}

// UpdateReservationInput carries the updatable parts of a reservation.
// A nil field leaves the current value untouched.
type UpdateReservationInput struct {
    Attendees []model.Attendee `json:"attendees"`
    UserNotes *string          `json:"notes"`
}

// UpdateReservation lets the owning user replace attendee details and
// notes on a non-terminal reservation.  The attendee count cannot
// change; that would require capacity re-accounting and is not a
// supported transition.
func (s *ReservationService) UpdateReservation(ctx context.Context, reservationID, actorID uint64, in UpdateReservationInput) (*model.Reservation, error) {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if res.UserID != actorID {
        return nil, fmt.Errorf("%w: not authorized to update this reservation", repository.ErrForbidden)
    }
    if res.IsTerminal() {
        return nil, fmt.Errorf("%w: cannot update a %s reservation", repository.ErrInvalidState, res.Status)
    }
    if in.Attendees != nil {
        if len(in.Attendees) != res.NumberOfAttendees {
            return nil, fmt.Errorf("%w: attendee count cannot change on update", repository.ErrValidation)
        }
        res.Attendees = in.Attendees
    }
    if in.UserNotes != nil {
        res.UserNotes = *in.UserNotes
    }
    if err := s.reservations.UpdateDetails(ctx, res); err != nil {
        return nil, err
    }
    return s.reservations.GetByID(ctx, reservationID)
}

// GetReservation returns a reservation to its owning user.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID, actorID uint64) (*model.Reservation, error) {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if res.UserID != actorID {
        return nil, fmt.Errorf("%w: not authorized to view this reservation", repository.ErrForbidden)
    }
    return res, nil
}

// GetReservationByCode looks a reservation up by its public code.
// Intended for door staff; callers are already authenticated.
func (s *ReservationService) GetReservationByCode(ctx context.Context, code string) (*model.Reservation, error) {
    return s.reservations.GetByCode(ctx, code)
}

// ListUserReservations returns all reservations made by a user.
func (s *ReservationService) ListUserReservations(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    return s.reservations.ListByUser(ctx, userID)
}

// ListEventReservations returns all reservations for an event on
// behalf of its organizer.
func (s *ReservationService) ListEventReservations(ctx context.Context, eventID, organizerID uint64) ([]model.Reservation, error) {
    event, err := s.events.GetByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if event.OrganizerID != organizerID {
        return nil, fmt.Errorf("%w: not authorized to view reservations for this event", repository.ErrForbidden)
    }
    return s.reservations.ListByEvent(ctx, eventID)
}

func (s *ReservationService) getForOrganizer(ctx context.Context, reservationID, organizerID uint64) (*model.Reservation, *model.Event, error) {
    res, err := s.reservations.GetByID(ctx, reservationID)
    if err != nil {
        return nil, nil, err
    }
    event, err := s.events.GetByID(ctx, res.EventID)
    if err != nil {
        return nil, nil, err
    }
    if event.OrganizerID != organizerID {
        return nil, nil, fmt.Errorf("%w: not the organizer of this event", repository.ErrForbidden)
    }
    return res, event, nil
}
