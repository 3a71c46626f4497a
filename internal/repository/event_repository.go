package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-reservation/internal/model"
)

// EventRepo provides CRUD operations for events plus the conditional
// attendee-count updates the reservation lifecycle relies on.  The
// current_attendees column is never written with a value read at the
// application layer; both ReserveSpotsTx and ReleaseSpotsTx are single
// conditional UPDATE statements so concurrent bookings can never
// overcommit seats against a stale read.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// that span events and reservations.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, organizer_id, title, description, status,
       pricing_type, price_amount, price_currency,
       starts_at, ends_at, registration_deadline,
       max_attendees, current_attendees, created_at, updated_at`

// Create inserts a new event in draft status and populates the
// generated ID and timestamps on the provided record.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
    const q = `INSERT INTO events
        (organizer_id, title, description, status, pricing_type, price_amount, price_currency,
         starts_at, ends_at, registration_deadline, max_attendees, current_attendees)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
    res, err := r.db.ExecContext(ctx, q,
        ev.OrganizerID, ev.Title, ev.Description, ev.Status,
        ev.PricingType, ev.PriceAmount, ev.PriceCurrency,
        ev.StartsAt.UTC(), ev.EndsAt.UTC(), ev.RegistrationDeadline.UTC(),
        ev.MaxAttendees,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    ev.ID = uint64(id)
    got, err := r.GetByID(ctx, ev.ID)
    if err != nil {
        return err
    }
    *ev = *got
    return nil
}

// GetByID returns the event with the given ID or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// ListPublished returns all published events ordered by start time.
func (r *EventRepo) ListPublished(ctx context.Context) ([]model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE status = 'published' ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    events := make([]model.Event, 0)
    for rows.Next() {
        ev, err := scanEvent(rows)
        if err != nil {
            return nil, err
        }
        events = append(events, *ev)
    }
    return events, rows.Err()
}

// UpdateStatus transitions an event to the given status on behalf of
// its organizer.  It returns ErrEventNotFound when the event does not
// exist and ErrForbidden when it belongs to a different organizer.
func (r *EventRepo) UpdateStatus(ctx context.Context, eventID, organizerID uint64, status string) error {
    const q = `UPDATE events SET status = ? WHERE id = ? AND organizer_id = ?`
    res, err := r.db.ExecContext(ctx, q, status, eventID, organizerID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish a missing event from one owned by someone else.
        var owner uint64
        err := r.db.QueryRowContext(ctx, `SELECT organizer_id FROM events WHERE id = ?`, eventID).Scan(&owner)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrEventNotFound
        }
        if err != nil {
            return err
        }
        if owner != organizerID {
            return ErrForbidden
        }
        // Same status written twice; treat as success.
    }
    return nil
}

// ReserveSpotsTx atomically increments current_attendees by n inside
// the supplied transaction, but only if the resulting value stays
// within max_attendees and the event is still published.  When the
// guard fails it reports ErrCapacityExceeded for a full event,
// ErrInvalidState for an unpublished one and ErrEventNotFound when the
// row vanished.  This is the only code path that increments capacity.
func (r *EventRepo) ReserveSpotsTx(ctx context.Context, tx *sql.Tx, eventID uint64, n int) error {
    const q = `UPDATE events
               SET current_attendees = current_attendees + ?
               WHERE id = ? AND status = 'published' AND current_attendees + ? <= max_attendees`
    res, err := tx.ExecContext(ctx, q, n, eventID, n)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 1 {
        return nil
    }
    var status string
    err = tx.QueryRowContext(ctx, `SELECT status FROM events WHERE id = ?`, eventID).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrEventNotFound
    }
    if err != nil {
        return err
    }
    if status != "published" {
        return ErrInvalidState
    }
    return ErrCapacityExceeded
}

// ReleaseSpotsTx decrements current_attendees by n inside the supplied
// transaction.  The count is floored at zero: when the stored value is
// already lower than n (which indicates a data inconsistency, not a
// normal path) the count is clamped to zero and clamped=true is
// returned so the caller can flag it.
func (r *EventRepo) ReleaseSpotsTx(ctx context.Context, tx *sql.Tx, eventID uint64, n int) (clamped bool, err error) {
    const q = `UPDATE events
               SET current_attendees = current_attendees - ?
               WHERE id = ? AND current_attendees >= ?`
    res, err := tx.ExecContext(ctx, q, n, eventID, n)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if affected == 1 {
        return false, nil
    }
    if _, err := tx.ExecContext(ctx, `UPDATE events SET current_attendees = 0 WHERE id = ?`, eventID); err != nil {
        return false, err
    }
    return true, nil
}

// rowScanner lets scanEvent work with both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...any) error
}

func (r *EventRepo) scanOne(row *sql.Row) (*model.Event, error) {
    ev, err := scanEvent(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    return ev, nil
}

func scanEvent(row rowScanner) (*model.Event, error) {
    var ev model.Event
    err := row.Scan(
        &ev.ID, &ev.OrganizerID, &ev.Title, &ev.Description, &ev.Status,
        &ev.PricingType, &ev.PriceAmount, &ev.PriceCurrency,
        &ev.StartsAt, &ev.EndsAt, &ev.RegistrationDeadline,
        &ev.MaxAttendees, &ev.CurrentAttendees, &ev.CreatedAt, &ev.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &ev, nil
}
