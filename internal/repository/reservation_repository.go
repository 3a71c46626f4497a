package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/event-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their
// attendee entries.  Reservations are created atomically with the
// event capacity increment and cancelled atomically with the matching
// decrement: both run inside a single transaction so the cross-entity
// invariant (sum of attendees over non-cancelled reservations equals
// the event's current_attendees) survives crashes and races.
//
// State transitions are conditional UPDATEs keyed on the current
// status.  When the predicate no longer holds — a concurrent caller
// moved the reservation first — zero rows are affected and ErrConflict
// is returned, so a cancel and a check-in racing on the same record
// produce exactly one winner.
type ReservationRepo struct {
    db     *sql.DB
    events *EventRepo
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database.  The EventRepo is used for the capacity updates that run
// inside reservation transactions.
func NewReservationRepo(db *sql.DB, events *EventRepo) *ReservationRepo {
    return &ReservationRepo{db: db, events: events}
}

const reservationColumns = `id, event_id, user_id, reservation_code, number_of_attendees,
       total_amount, payment_status, payment_method, payment_transaction_id, payment_date,
       status, check_in_time, cancelled_at, cancelled_by, cancellation_reason,
       user_notes, admin_notes, created_at, updated_at`

// Create inserts a reservation together with its attendee entries and
// increments the event's attendee count, all in one transaction.  The
// capacity guard runs first; on ErrCapacityExceeded (or a vanished /
// unpublished event) nothing is written.  A duplicate reservation code
// — possible when two generators race between the uniqueness probe and
// the insert — surfaces as ErrConflict so the caller can retry with a
// fresh code.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := r.events.ReserveSpotsTx(ctx, tx, res.EventID, res.NumberOfAttendees); err != nil {
        return err
    }

    const q = `INSERT INTO reservations
        (event_id, user_id, reservation_code, number_of_attendees, total_amount,
         payment_status, payment_method, status, user_notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        res.EventID, res.UserID, res.Code, res.NumberOfAttendees, res.TotalAmount,
        res.PaymentStatus, res.PaymentMethod, res.Status, res.UserNotes,
    )
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
            return ErrConflict
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)

    if err := r.createAttendeesTx(ctx, tx, res.ID, res.Attendees); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true

    // Query back to populate timestamps and defaults.
    got, err := r.GetByID(ctx, res.ID)
    if err != nil {
        return err
    }
    *res = *got
    return nil
}

// createAttendeesTx bulk-inserts the attendee rows for a reservation in
// a single statement.  Passing an empty slice has no effect.
func (r *ReservationRepo) createAttendeesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, attendees []model.Attendee) error {
    if len(attendees) == 0 {
        return nil
    }
    query := `INSERT INTO reservation_attendees
        (reservation_id, name, email, phone, age, dietary_restrictions, special_requirements) VALUES `
    args := make([]interface{}, 0, len(attendees)*7)
    for i, a := range attendees {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?, ?)"
        args = append(args, reservationID, a.Name, strings.ToLower(a.Email), a.Phone, a.Age,
            a.DietaryRestrictions, a.SpecialRequirements)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// GetByID returns a reservation with its attendee entries or
// ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    if err := r.loadAttendees(ctx, []*model.Reservation{res}); err != nil {
        return nil, err
    }
    return res, nil
}

// GetByCode returns a reservation looked up by its public code, or
// ErrReservationNotFound.  Codes are stored uppercase; lookups
// normalise the input the same way.
func (r *ReservationRepo) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_code = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, strings.ToUpper(code)))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    if err := r.loadAttendees(ctx, []*model.Reservation{res}); err != nil {
        return nil, err
    }
    return res, nil
}

// CodeExists reports whether a reservation code is already assigned.
// Used by the code generator's uniqueness probe.
func (r *ReservationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
    var one int
    err := r.db.QueryRowContext(ctx,
        `SELECT 1 FROM reservations WHERE reservation_code = ?`, strings.ToUpper(code),
    ).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ListByUser returns all reservations made by a user, newest first,
// with attendee entries populated.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY created_at DESC`
    return r.list(ctx, q, userID)
}

// ListByEvent returns all reservations for an event, newest first,
// with attendee entries populated.  Ownership checks are performed by
// the service layer.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE event_id = ? ORDER BY created_at DESC`
    return r.list(ctx, q, eventID)
}

func (r *ReservationRepo) list(ctx context.Context, query string, arg interface{}) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, query, arg)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    refs := make([]*model.Reservation, len(out))
    for i := range out {
        refs[i] = &out[i]
    }
    if err := r.loadAttendees(ctx, refs); err != nil {
        return nil, err
    }
    return out, nil
}

// loadAttendees populates the Attendees slice for every reservation in
// one query.
func (r *ReservationRepo) loadAttendees(ctx context.Context, reservations []*model.Reservation) error {
    if len(reservations) == 0 {
        return nil
    }
    index := make(map[uint64]*model.Reservation, len(reservations))
    ids := make([]interface{}, 0, len(reservations))
    placeholders := make([]string, 0, len(reservations))
    for _, res := range reservations {
        res.Attendees = []model.Attendee{}
        index[res.ID] = res
        ids = append(ids, res.ID)
        placeholders = append(placeholders, "?")
    }
    query := `SELECT id, reservation_id, name, email, phone, age, dietary_restrictions, special_requirements
              FROM reservation_attendees
              WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY reservation_id, id`
    rows, err := r.db.QueryContext(ctx, query, ids...)
    if err != nil {
        return err
    }
    defer rows.Close()
    for rows.Next() {
        var a model.Attendee
        var phone, dietary, special sql.NullString
        var age sql.NullInt64
        if err := rows.Scan(&a.ID, &a.ReservationID, &a.Name, &a.Email, &phone, &age, &dietary, &special); err != nil {
            return err
        }
        a.Phone = phone.String
        a.DietaryRestrictions = dietary.String
        a.SpecialRequirements = special.String
        if age.Valid {
            n := int(age.Int64)
            a.Age = &n
        }
        if res, ok := index[a.ReservationID]; ok {
            res.Attendees = append(res.Attendees, a)
        }
    }
    return rows.Err()
}

// MarkCancelled transitions a reservation to cancelled and releases its
// seats, in one transaction.  The status predicate admits only pending
// and confirmed reservations; a concurrent transition makes the update
// a no-op and ErrConflict is returned.  The returned clamped flag is
// true when the event counter had to be floored at zero, which means
// the capacity books were already inconsistent before this call.
func (r *ReservationRepo) MarkCancelled(ctx context.Context, res *model.Reservation, cancelledBy uint64, reason string) (clamped bool, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `UPDATE reservations
               SET status = 'cancelled', payment_status = 'cancelled',
                   cancelled_at = ?, cancelled_by = ?, cancellation_reason = ?
               WHERE id = ? AND status IN ('pending', 'confirmed')`
    now := time.Now().UTC()
    result, err := tx.ExecContext(ctx, q, now, cancelledBy, reason, res.ID)
    if err != nil {
        return false, err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    if affected == 0 {
        return false, ErrConflict
    }

    clamped, err = r.events.ReleaseSpotsTx(ctx, tx, res.EventID, res.NumberOfAttendees)
    if err != nil {
        return false, err
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return clamped, nil
}

// MarkPaid records a confirmed payment: payment_status becomes paid,
// status becomes confirmed, and the transaction reference and payment
// date are stamped.  Only pending and confirmed reservations qualify;
// anything else means a concurrent transition and yields ErrConflict.
func (r *ReservationRepo) MarkPaid(ctx context.Context, id uint64, transactionID string, paidAt time.Time) error {
    const q = `UPDATE reservations
               SET payment_status = 'paid', status = 'confirmed',
                   payment_transaction_id = ?, payment_date = ?
               WHERE id = ? AND status IN ('pending', 'confirmed')`
    return r.conditionalUpdate(ctx, q, transactionID, paidAt.UTC(), id)
}

// MarkAttended records a check-in: status becomes attended and the
// check-in time is stamped.  Only confirmed reservations qualify.
func (r *ReservationRepo) MarkAttended(ctx context.Context, id uint64, at time.Time) error {
    const q = `UPDATE reservations
               SET status = 'attended', check_in_time = ?
               WHERE id = ? AND status = 'confirmed'`
    return r.conditionalUpdate(ctx, q, at.UTC(), id)
}

// MarkNoShow records that a confirmed party never arrived.  Capacity
// is not released; the seats were consumed by the booking.
func (r *ReservationRepo) MarkNoShow(ctx context.Context, id uint64) error {
    const q = `UPDATE reservations SET status = 'no_show' WHERE id = ? AND status = 'confirmed'`
    return r.conditionalUpdate(ctx, q, id)
}

// UpdateDetails replaces a reservation's attendee entries and notes.
// The attendee count must not change; capacity accounting is untouched.
// Terminal reservations are rejected with ErrConflict by the status
// predicate.
func (r *ReservationRepo) UpdateDetails(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `UPDATE reservations
               SET user_notes = ?, admin_notes = ?
               WHERE id = ? AND status IN ('pending', 'confirmed')`
    result, err := tx.ExecContext(ctx, q, res.UserNotes, res.AdminNotes, res.ID)
    if err != nil {
        return err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrConflict
    }
    if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_attendees WHERE reservation_id = ?`, res.ID); err != nil {
        return err
    }
    if err := r.createAttendeesTx(ctx, tx, res.ID, res.Attendees); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// StatsByOrganizer aggregates reservation counts, attendee totals and
// revenue over every reservation made against the organizer's events.
// An organizer with no events or reservations gets all-zero values.
func (r *ReservationRepo) StatsByOrganizer(ctx context.Context, organizerID uint64) (*model.ReservationStats, error) {
    const q = `SELECT COUNT(r.id),
                      COALESCE(SUM(r.number_of_attendees), 0),
                      COALESCE(SUM(r.total_amount), 0),
                      COALESCE(SUM(r.status = 'confirmed'), 0),
                      COALESCE(SUM(r.status = 'cancelled'), 0),
                      COALESCE(SUM(r.status = 'attended'), 0)
               FROM reservations r
               JOIN events e ON e.id = r.event_id
               WHERE e.organizer_id = ?`
    stats := model.ZeroStats()
    err := r.db.QueryRowContext(ctx, q, organizerID).Scan(
        &stats.TotalReservations, &stats.TotalAttendees, &stats.TotalRevenue,
        &stats.ConfirmedReservations, &stats.CancelledReservations, &stats.AttendedReservations,
    )
    if err != nil {
        return nil, err
    }
    return stats, nil
}

func (r *ReservationRepo) conditionalUpdate(ctx context.Context, query string, args ...interface{}) error {
    res, err := r.db.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrConflict
    }
    return nil
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
    var res model.Reservation
    var txID, cancelReason, userNotes, adminNotes sql.NullString
    var payDate, checkIn, cancelledAt sql.NullTime
    var cancelledBy sql.NullInt64
    err := row.Scan(
        &res.ID, &res.EventID, &res.UserID, &res.Code, &res.NumberOfAttendees,
        &res.TotalAmount, &res.PaymentStatus, &res.PaymentMethod, &txID, &payDate,
        &res.Status, &checkIn, &cancelledAt, &cancelledBy, &cancelReason,
        &userNotes, &adminNotes, &res.CreatedAt, &res.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if txID.Valid {
        v := txID.String
        res.PaymentTransactionID = &v
    }
    if payDate.Valid {
        t := payDate.Time.UTC()
        res.PaymentDate = &t
    }
    if checkIn.Valid {
        t := checkIn.Time.UTC()
        res.CheckInTime = &t
    }
    if cancelledAt.Valid {
        res.Cancellation = &model.Cancellation{
            CancelledAt: cancelledAt.Time.UTC(),
            CancelledBy: uint64(cancelledBy.Int64),
            Reason:      cancelReason.String,
        }
    }
    res.UserNotes = userNotes.String
    res.AdminNotes = adminNotes.String
    return &res, nil
}
