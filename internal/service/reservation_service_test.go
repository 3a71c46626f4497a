package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/queue"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// fakeEventStore is an in-memory EventStore whose capacity mutations
// run under one lock, mirroring the conditional UPDATEs of the SQL
// implementation: reserve checks and increments atomically, release
// decrements with a floor at zero.
type fakeEventStore struct {
	mu     sync.Mutex
	events map[uint64]*model.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[uint64]*model.Event)}
}

func (s *fakeEventStore) add(ev *model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *fakeEventStore) reserve(id uint64, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	if ev.Status != model.EventStatusPublished {
		return repository.ErrInvalidState
	}
	if ev.CurrentAttendees+n > ev.MaxAttendees {
		return repository.ErrCapacityExceeded
	}
	ev.CurrentAttendees += n
	return nil
}

func (s *fakeEventStore) release(id uint64, n int) (clamped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return false
	}
	ev.CurrentAttendees -= n
	if ev.CurrentAttendees < 0 {
		ev.CurrentAttendees = 0
		clamped = true
	}
	return clamped
}

// attendeeCount is a test-side accessor for assertions.
func (s *fakeEventStore) attendeeCount(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id].CurrentAttendees
}

// fakeStore is an in-memory ReservationStore with the same atomicity
// contract as the SQL implementation: every state transition is
// conditional on the current status and fails with ErrConflict when a
// concurrent caller moved the record first.
type fakeStore struct {
	mu            sync.Mutex
	events        *fakeEventStore
	reservations  map[uint64]*model.Reservation
	byCode        map[string]uint64
	nextID        uint64
	conflictFirst int // make the first n Create calls fail with ErrConflict
	creates       int
}

func newFakeStore(events *fakeEventStore) *fakeStore {
	return &fakeStore{
		events:       events,
		reservations: make(map[uint64]*model.Reservation),
		byCode:       make(map[string]uint64),
	}
}

func (s *fakeStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byCode[code]
	return ok, nil
}

func (s *fakeStore) Create(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.creates <= s.conflictFirst {
		return repository.ErrConflict
	}
	if _, dup := s.byCode[res.Code]; dup {
		return repository.ErrConflict
	}
	if err := s.events.reserve(res.EventID, res.NumberOfAttendees); err != nil {
		return err
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	s.reservations[res.ID] = &cp
	s.byCode[res.Code] = res.ID
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOf(id)
}

func (s *fakeStore) GetByCode(_ context.Context, code string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return s.copyOf(id)
}

func (s *fakeStore) copyOf(id uint64) (*model.Reservation, error) {
	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	if res.Cancellation != nil {
		c := *res.Cancellation
		cp.Cancellation = &c
	}
	return &cp, nil
}

func (s *fakeStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, res := range s.reservations {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByEvent(_ context.Context, eventID uint64) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, res := range s.reservations {
		if res.EventID == eventID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkCancelled(_ context.Context, res *model.Reservation, cancelledBy uint64, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[res.ID]
	if !ok {
		return false, repository.ErrReservationNotFound
	}
	if stored.Status != model.ReservationStatusPending && stored.Status != model.ReservationStatusConfirmed {
		return false, repository.ErrConflict
	}
	stored.Status = model.ReservationStatusCancelled
	stored.PaymentStatus = model.PaymentStatusCancelled
	stored.Cancellation = &model.Cancellation{
		CancelledAt: time.Now().UTC(),
		CancelledBy: cancelledBy,
		Reason:      reason,
	}
	return s.events.release(stored.EventID, stored.NumberOfAttendees), nil
}

func (s *fakeStore) MarkPaid(_ context.Context, id uint64, transactionID string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if stored.Status != model.ReservationStatusPending && stored.Status != model.ReservationStatusConfirmed {
		return repository.ErrConflict
	}
	stored.PaymentStatus = model.PaymentStatusPaid
	stored.Status = model.ReservationStatusConfirmed
	if transactionID != "" {
		stored.PaymentTransactionID = &transactionID
	}
	stored.PaymentDate = &paidAt
	return nil
}

func (s *fakeStore) MarkAttended(_ context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if stored.Status != model.ReservationStatusConfirmed {
		return repository.ErrConflict
	}
	stored.Status = model.ReservationStatusAttended
	stored.CheckInTime = &at
	return nil
}

func (s *fakeStore) MarkNoShow(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if stored.Status != model.ReservationStatusConfirmed {
		return repository.ErrConflict
	}
	stored.Status = model.ReservationStatusNoShow
	return nil
}

func (s *fakeStore) UpdateDetails(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.reservations[res.ID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if stored.Status != model.ReservationStatusPending && stored.Status != model.ReservationStatusConfirmed {
		return repository.ErrConflict
	}
	stored.Attendees = res.Attendees
	stored.UserNotes = res.UserNotes
	stored.AdminNotes = res.AdminNotes
	return nil
}

// status is a test-side accessor for assertions.
func (s *fakeStore) status(id uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id].Status
}

// fakePublisher records published lifecycle events.
type fakePublisher struct {
	mu        sync.Mutex
	confirmed []queue.ReservationConfirmedEvent
	cancelled []queue.ReservationCancelledEvent
}

func (p *fakePublisher) PublishReservationConfirmed(_ context.Context, event queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, event)
	return nil
}

func (p *fakePublisher) PublishReservationCancelled(_ context.Context, event queue.ReservationCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, event)
	return nil
}

// ----- fixtures -----

const (
	organizerID = uint64(99)
	bookerID    = uint64(7)
)

func publishedEvent(id uint64, max int) *model.Event {
	now := time.Now().UTC()
	return &model.Event{
		ID:                   id,
		OrganizerID:          organizerID,
		Title:                "Go Meetup",
		Status:               model.EventStatusPublished,
		PricingType:          model.PricingFree,
		PriceAmount:          decimal.Zero,
		StartsAt:             now.Add(24 * time.Hour),
		EndsAt:               now.Add(26 * time.Hour),
		RegistrationDeadline: now.Add(23 * time.Hour),
		MaxAttendees:         max,
	}
}

func paidEvent(id uint64, max int, price string) *model.Event {
	ev := publishedEvent(id, max)
	ev.PricingType = model.PricingPaid
	ev.PriceAmount = decimal.RequireFromString(price)
	ev.PriceCurrency = "EUR"
	return ev
}

func attendees(n int) []model.Attendee {
	out := make([]model.Attendee, n)
	for i := range out {
		out[i] = model.Attendee{Name: "Guest", Email: "guest@example.com"}
	}
	return out
}

func newFixture(t *testing.T) (*fakeEventStore, *fakeStore, *fakePublisher, *ReservationService) {
	t.Helper()
	events := newFakeEventStore()
	store := newFakeStore(events)
	pub := &fakePublisher{}
	svc := NewReservationService(events, store, NewCodeGenerator(store), pub)
	return events, store, pub, svc
}

func createInput(eventID uint64, n int) CreateReservationInput {
	return CreateReservationInput{
		EventID:           eventID,
		Attendees:         attendees(n),
		NumberOfAttendees: n,
	}
}

// ----- create -----

func TestCreateReservationFreeEvent(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 100))

	in := createInput(1, 2)
	in.PaymentMethod = "credit_card" // ignored for free events

	res, err := svc.CreateReservation(context.Background(), bookerID, in)
	require.NoError(t, err)

	assert.Equal(t, model.ReservationStatusPending, res.Status)
	assert.Equal(t, model.PaymentStatusPending, res.PaymentStatus)
	assert.Equal(t, model.PaymentMethodFree, res.PaymentMethod)
	assert.True(t, res.TotalAmount.IsZero())
	assert.Len(t, res.Code, 8)
	assert.Equal(t, 2, events.attendeeCount(1))
}

func TestCreateReservationPaidEvent(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(paidEvent(1, 100, "19.50"))

	in := createInput(1, 3)
	in.PaymentMethod = "paypal"

	res, err := svc.CreateReservation(context.Background(), bookerID, in)
	require.NoError(t, err)
	assert.Equal(t, "paypal", res.PaymentMethod)
	assert.True(t, res.TotalAmount.Equal(decimal.RequireFromString("58.50")))
}

func TestCreateReservationValidation(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 100))
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, bookerID, CreateReservationInput{EventID: 1})
	assert.ErrorIs(t, err, repository.ErrValidation)

	in := createInput(1, 2)
	in.Attendees = attendees(1) // count mismatch
	_, err = svc.CreateReservation(ctx, bookerID, in)
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestCreateReservationPreconditionOrder(t *testing.T) {
	events, _, _, svc := newFixture(t)
	ctx := context.Background()

	// Missing event.
	_, err := svc.CreateReservation(ctx, bookerID, createInput(42, 1))
	assert.ErrorIs(t, err, repository.ErrEventNotFound)

	// Draft event.
	draft := publishedEvent(2, 100)
	draft.Status = model.EventStatusDraft
	events.add(draft)
	_, err = svc.CreateReservation(ctx, bookerID, createInput(2, 1))
	assert.ErrorIs(t, err, repository.ErrInvalidState)

	// Deadline passed.
	events.add(publishedEvent(3, 100))
	svc.now = func() time.Time { return time.Now().UTC().Add(48 * time.Hour) }
	_, err = svc.CreateReservation(ctx, bookerID, createInput(3, 1))
	assert.ErrorIs(t, err, repository.ErrDeadlinePassed)
	svc.now = func() time.Time { return time.Now().UTC() }

	// Not enough spots.
	small := publishedEvent(4, 2)
	small.CurrentAttendees = 2
	events.add(small)
	_, err = svc.CreateReservation(ctx, bookerID, createInput(4, 1))
	assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
}

func TestCreateReservationPaidRequiresMethod(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(paidEvent(1, 100, "10.00"))
	ctx := context.Background()

	in := createInput(1, 1)
	_, err := svc.CreateReservation(ctx, bookerID, in)
	assert.ErrorIs(t, err, repository.ErrValidation)

	in.PaymentMethod = "free" // not acceptable on a paid event
	_, err = svc.CreateReservation(ctx, bookerID, in)
	assert.ErrorIs(t, err, repository.ErrValidation)

	in.PaymentMethod = "carrier_pigeon"
	_, err = svc.CreateReservation(ctx, bookerID, in)
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestCreateReservationRetriesCodeConflict(t *testing.T) {
	events, store, _, svc := newFixture(t)
	events.add(publishedEvent(1, 100))
	store.conflictFirst = 2

	res, err := svc.CreateReservation(context.Background(), bookerID, createInput(1, 1))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, 3, store.creates)
}

func TestCreateReservationGivesUpAfterRetries(t *testing.T) {
	events, store, _, svc := newFixture(t)
	events.add(publishedEvent(1, 100))
	store.conflictFirst = 10

	_, err := svc.CreateReservation(context.Background(), bookerID, createInput(1, 1))
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCreateReservationConcurrentLastSeat(t *testing.T) {
	events, _, _, svc := newFixture(t)
	ev := publishedEvent(1, 10)
	ev.CurrentAttendees = 9
	events.add(ev)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(context.Background(), uint64(100+i), createInput(1, 1))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, wins, "exactly one booking may take the last seat")
	assert.Equal(t, 10, events.attendeeCount(1))
}

func TestCreateReservationNeverOversells(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))

	const workers = 40
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.CreateReservation(context.Background(), uint64(100+i), createInput(1, 1)); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, wins)
	assert.Equal(t, 10, events.attendeeCount(1))
}

// ----- cancel -----

func TestCancelReservationRoundTrip(t *testing.T) {
	events, _, pub, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 3))
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, res.ID, bookerID, "plans changed"))

	got, err := svc.GetReservation(ctx, res.ID, bookerID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusCancelled, got.Status)
	assert.Equal(t, model.PaymentStatusCancelled, got.PaymentStatus)
	require.NotNil(t, got.Cancellation)
	assert.Equal(t, bookerID, got.Cancellation.CancelledBy)
	assert.Equal(t, "plans changed", got.Cancellation.Reason)

	assert.Equal(t, 0, events.attendeeCount(1), "seats must be released")

	require.Len(t, pub.cancelled, 1)
	assert.Equal(t, 3, pub.cancelled[0].SpotsReleased)
}

func TestCancelReservationTwice(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 2))
	require.NoError(t, err)

	require.NoError(t, svc.CancelReservation(ctx, res.ID, bookerID, ""))
	err = svc.CancelReservation(ctx, res.ID, bookerID, "")
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)

	assert.Equal(t, 0, events.attendeeCount(1), "capacity must not be released twice")
}

func TestCancelReservationWrongUser(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)

	err = svc.CancelReservation(ctx, res.ID, bookerID+1, "")
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestCancelAttendedReservation(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, ""))
	require.NoError(t, svc.CheckIn(ctx, res.ID, organizerID))

	err = svc.CancelReservation(ctx, res.ID, bookerID, "")
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

// ----- payment -----

func TestConfirmPayment(t *testing.T) {
	events, _, pub, svc := newFixture(t)
	events.add(paidEvent(1, 10, "25.00"))
	ctx := context.Background()

	in := createInput(1, 2)
	in.PaymentMethod = "credit_card"
	res, err := svc.CreateReservation(ctx, bookerID, in)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, "tx-123"))

	got, err := svc.GetReservation(ctx, res.ID, bookerID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, got.Status)
	assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentTransactionID)
	assert.Equal(t, "tx-123", *got.PaymentTransactionID)
	assert.NotNil(t, got.PaymentDate)

	require.Len(t, pub.confirmed, 1)
	assert.Equal(t, "Go Meetup", pub.confirmed[0].EventTitle)
	assert.Equal(t, "EUR", pub.confirmed[0].Currency)
	total := decimal.RequireFromString(pub.confirmed[0].TotalAmount)
	assert.True(t, total.Equal(decimal.RequireFromString("50")))
}

func TestConfirmPaymentOnTerminalReservation(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)
	require.NoError(t, svc.CancelReservation(ctx, res.ID, bookerID, ""))

	err = svc.ConfirmPayment(ctx, res.ID, "tx-1")
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

// ----- check-in / no-show -----

func TestCheckIn(t *testing.T) {
	events, store, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, ""))

	require.NoError(t, svc.CheckIn(ctx, res.ID, organizerID))

	got, err := store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusAttended, got.Status)
	assert.NotNil(t, got.CheckInTime)
}

func TestCheckInRequiresConfirmed(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)

	err = svc.CheckIn(ctx, res.ID, organizerID)
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestCheckInWrongOrganizer(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, ""))

	err = svc.CheckIn(ctx, res.ID, organizerID+1)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestMarkNoShow(t *testing.T) {
	events, store, _, svc := newFixture(t)
	ev := publishedEvent(1, 10)
	events.add(ev)
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 2))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, ""))

	// Before the event starts the transition is rejected.
	err = svc.MarkNoShow(ctx, res.ID, organizerID)
	assert.ErrorIs(t, err, repository.ErrInvalidState)

	svc.now = func() time.Time { return ev.StartsAt.Add(time.Hour) }
	require.NoError(t, svc.MarkNoShow(ctx, res.ID, organizerID))
	assert.Equal(t, model.ReservationStatusNoShow, store.status(res.ID))

	// No-show never releases seats.
	assert.Equal(t, 2, events.attendeeCount(1))
}

func TestCancelVsCheckInOneWinner(t *testing.T) {
	events, store, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPayment(ctx, res.ID, ""))

	var wg sync.WaitGroup
	var cancelErr, checkInErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		cancelErr = svc.CancelReservation(ctx, res.ID, bookerID, "")
	}()
	go func() {
		defer wg.Done()
		checkInErr = svc.CheckIn(ctx, res.ID, organizerID)
	}()
	wg.Wait()

	switch store.status(res.ID) {
	case model.ReservationStatusCancelled:
		assert.NoError(t, cancelErr)
		assert.Error(t, checkInErr)
	case model.ReservationStatusAttended:
		assert.NoError(t, checkInErr)
		assert.Error(t, cancelErr)
	default:
		t.Fatalf("unexpected final status %s", store.status(res.ID))
	}
}

// ----- update / read -----

func TestUpdateReservation(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 2))
	require.NoError(t, err)

	notes := "vegetarian table please"
	updated, err := svc.UpdateReservation(ctx, res.ID, bookerID, UpdateReservationInput{UserNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.UserNotes)

	// Changing the attendee count is not a supported transition.
	_, err = svc.UpdateReservation(ctx, res.ID, bookerID, UpdateReservationInput{Attendees: attendees(3)})
	assert.ErrorIs(t, err, repository.ErrValidation)

	// Other users cannot touch the reservation.
	_, err = svc.UpdateReservation(ctx, res.ID, bookerID+1, UpdateReservationInput{UserNotes: &notes})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestGetReservationOwnerOnly(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)

	_, err = svc.GetReservation(ctx, res.ID, bookerID+1)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	byCode, err := svc.GetReservationByCode(ctx, strings.ToLower(res.Code))
	require.NoError(t, err)
	assert.Equal(t, res.ID, byCode.ID)
}

func TestListEventReservationsOrganizerOnly(t *testing.T) {
	events, _, _, svc := newFixture(t)
	events.add(publishedEvent(1, 10))
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, bookerID, createInput(1, 1))
	require.NoError(t, err)

	_, err = svc.ListEventReservations(ctx, 1, organizerID+1)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	list, err := svc.ListEventReservations(ctx, 1, organizerID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
