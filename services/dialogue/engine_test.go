package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hotelbot/config"
	"hotelbot/models"
	"hotelbot/services/booking"
	ai "hotelbot/services/intelligence"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

type fakeClassifier struct {
	err   error
	calls int
}

func (f *fakeClassifier) ClassifyIntent(ctx context.Context, text string) (models.Intent, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return ai.KeywordClassifier{}.ClassifyIntent(ctx, text)
}

type fakeBookings struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	createErr  error
	getErr     error
	updateErr  error
	deleteErr  error
	confirmErr error

	creates, gets, updates, deletes int
	lastPatch                       models.BookingPatch
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookings) seed(checkIn time.Time, nights int) *models.Booking {
	b := &models.Booking{
		ID:           uuid.New().String(),
		Guest:        models.Guest{Name: "Jane Doe", Email: "jane@example.com"},
		Room:         models.RoomDetails{RoomType: "standard", Rate: 120, NumAdults: 1},
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, nights),
	}
	b.RecalculateTotal()
	f.bookings[b.ID] = b
	return b
}

func (f *fakeBookings) CreateBooking(_ context.Context, in models.BookingInput) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	b := &models.Booking{
		ID:           uuid.New().String(),
		Guest:        in.Guest,
		Room:         models.RoomDetails{RoomType: in.RoomType, Rate: 120, NumAdults: in.NumAdults, NumChildren: in.NumChildren},
		CheckInDate:  in.CheckInDate,
		CheckOutDate: in.CheckOutDate,
	}
	b.RecalculateTotal()
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeBookings) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) UpdateBooking(_ context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.lastPatch = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	if patch.CheckInDate != nil {
		b.CheckInDate = *patch.CheckInDate
	}
	if patch.CheckOutDate != nil {
		b.CheckOutDate = *patch.CheckOutDate
	}
	b.RecalculateTotal()
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) DeleteBooking(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.bookings[id]; !ok {
		return false, nil
	}
	delete(f.bookings, id)
	return true, nil
}

func (f *fakeBookings) GenerateConfirmationText(_ context.Context, b *models.Booking) (string, error) {
	if f.confirmErr != nil {
		return "", f.confirmErr
	}
	return fmt.Sprintf("Confirmed %s for %s.", b.ID, b.Guest.Name), nil
}

type fakeAnswerer struct {
	err   error
	calls int
}

func (f *fakeAnswerer) AnswerInquiry(_ context.Context, question string, facts config.HotelFacts) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "Check-in is at " + facts.CheckInTime + ".", nil
}

type harness struct {
	engine     *Engine
	classifier *fakeClassifier
	bookings   *fakeBookings
	answerer   *fakeAnswerer
	now        time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		classifier: &fakeClassifier{},
		bookings:   newFakeBookings(),
		answerer:   &fakeAnswerer{},
		now:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	hotel := config.DefaultHotel()
	h.engine = NewEngine(
		NewStateStore(NewMemoryBackend()),
		h.classifier,
		h.bookings,
		h.answerer,
		NewValidator(DefaultLimits(), hotel.RoomTypes),
		hotel,
		WithClock(func() time.Time { return h.now }),
	)
	return h
}

func (h *harness) say(t *testing.T, user string, texts ...string) string {
	t.Helper()
	var reply string
	for _, text := range texts {
		reply = h.engine.HandleTurn(context.Background(), user, text)
		require.NotEmpty(t, reply, "empty reply to %q", text)
	}
	return reply
}

func (h *harness) state(t *testing.T, user string) *models.ConversationState {
	t.Helper()
	st, err := h.engine.State(context.Background(), user)
	require.NoError(t, err)
	return st
}

func TestHandleTurn_EndToEndBooking(t *testing.T) {
	h := newHarness(t)

	reply := h.say(t, "u1", "I want to book a room")
	assert.Contains(t, reply, "What dates")
	assert.Equal(t, models.IntentBooking, h.state(t, "u1").CurrentIntent)

	reply = h.say(t, "u1", "tomorrow for 2 nights")
	assert.Contains(t, reply, "2025-06-02 to 2025-06-04")
	assert.Contains(t, reply, "Which room type")

	reply = h.say(t, "u1", "standard")
	assert.Contains(t, reply, "Standard Room it is, $240 for 2 nights.")
	assert.Contains(t, reply, "email")

	reply = h.say(t, "u1", "Jane Doe jane@example.com")
	require.Equal(t, 1, h.bookings.creates)

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentNone, st.CurrentIntent)
	assert.True(t, st.Slots.Empty())
	assert.Empty(t, st.ActiveBookingRef)
	require.NotEmpty(t, st.LastBookingRef)
	assert.Contains(t, reply, st.LastBookingRef)

	created := h.bookings.bookings[st.LastBookingRef]
	require.NotNil(t, created)
	assert.Equal(t, "Jane Doe", created.Guest.Name)
	assert.Equal(t, "standard", created.Room.RoomType)
	assert.Equal(t, 1, created.Room.NumAdults)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), created.CheckInDate)
	assert.Equal(t, 2, created.Nights())
}

func TestHandleTurn_PartyTooLargeForRoom(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "I want to book a room", "tomorrow for 2 nights", "standard")

	reply := h.say(t, "u1", "Jane Doe jane@example.com 3 adults")
	assert.Contains(t, reply, "sleeps at most 2")
	assert.Contains(t, reply, "Which room type")
	assert.Equal(t, 0, h.bookings.creates)

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentBooking, st.CurrentIntent)
	assert.Empty(t, st.Slots.RoomType)
	require.NotNil(t, st.Slots.Guest)
	assert.Equal(t, 3, st.Slots.Guest.Adults)

	h.say(t, "u1", "deluxe")
	require.Equal(t, 1, h.bookings.creates)
	created := h.bookings.bookings[h.state(t, "u1").LastBookingRef]
	require.NotNil(t, created)
	assert.Equal(t, "deluxe", created.Room.RoomType)
	assert.Equal(t, 3, created.Room.NumAdults)
}

func TestHandleTurn_NewRequestAfterCompletedBooking(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "I want to book a room", "tomorrow for 2 nights", "standard", "Jane Doe jane@example.com")

	reply := h.say(t, "u1", "I'd like to book another room")
	assert.Contains(t, reply, "What dates")
	assert.Equal(t, 2, h.classifier.calls)
}

func TestHandleTurn_DoesNotReclassifyMidFlow(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room")
	h.say(t, "u1", "what is the check-in time on 2025-06-10?")
	assert.Equal(t, 1, h.classifier.calls)

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentBooking, st.CurrentIntent)
	require.NotNil(t, st.Slots.Dates)
}

func TestHandleTurn_FailedValidationIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room", "tomorrow")
	before := h.state(t, "u1")

	for _, text := range []string{"a penthouse please", "no idea"} {
		reply := h.say(t, "u1", text)
		assert.Contains(t, reply, "Which room type")
		after := h.state(t, "u1")
		assert.Equal(t, before.CurrentIntent, after.CurrentIntent)
		assert.Equal(t, before.Slots, after.Slots)
		assert.Equal(t, before.ActiveBookingRef, after.ActiveBookingRef)
	}

	h2 := newHarness(t)
	h2.say(t, "u2", "book a room")
	before = h2.state(t, "u2")
	reply := h2.say(t, "u2", "2025-05-01 to 2025-05-03")
	assert.Contains(t, reply, "past")
	after := h2.state(t, "u2")
	assert.Equal(t, before.CurrentIntent, after.CurrentIntent)
	assert.Equal(t, before.Slots, after.Slots)
	assert.Equal(t, before.ActiveBookingRef, after.ActiveBookingRef)
}

func TestHandleTurn_LeadTimeBoundary(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room")

	reply := h.say(t, "u1", "2026-06-02 to 2026-06-04") // 366 days out
	assert.Contains(t, reply, "365 days")
	assert.Nil(t, h.state(t, "u1").Slots.Dates)

	reply = h.say(t, "u1", "2026-06-01 to 2026-06-03") // 365 days out
	assert.Contains(t, reply, "Which room type")
	assert.NotNil(t, h.state(t, "u1").Slots.Dates)
}

func TestHandleTurn_CreateValidationErrorKeepsIntent(t *testing.T) {
	h := newHarness(t)
	h.bookings.createErr = booking.NewValidationError("room_type", "Standard Room sleeps at most 2 guests")

	reply := h.say(t, "u1", "book a room", "tomorrow", "standard", "Ann ann@example.com 3 adults")
	assert.Contains(t, reply, "sleeps at most 2 guests")
	assert.Contains(t, reply, "Which room type")

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentBooking, st.CurrentIntent)
	assert.Equal(t, "Standard Room sleeps at most 2 guests", st.LastError)
	assert.Empty(t, st.Slots.RoomType)
	assert.NotNil(t, st.Slots.Dates)
	assert.NotNil(t, st.Slots.Guest)

	h.bookings.createErr = nil
	reply = h.say(t, "u1", "suite")
	assert.Equal(t, 2, h.bookings.creates)
	st = h.state(t, "u1")
	assert.Equal(t, models.IntentNone, st.CurrentIntent)
	assert.Empty(t, st.LastError)
	assert.Contains(t, reply, st.LastBookingRef)
}

func TestHandleTurn_CreateUnavailableLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room", "tomorrow", "deluxe")
	before := h.state(t, "u1")

	h.bookings.createErr = errDown
	reply := h.say(t, "u1", "Jane Doe jane@example.com")
	assert.Equal(t, replyUnavailable, reply)

	after := h.state(t, "u1")
	assert.Equal(t, before.CurrentIntent, after.CurrentIntent)
	assert.Equal(t, before.Slots, after.Slots)

	h.bookings.createErr = nil
	reply = h.say(t, "u1", "Jane Doe jane@example.com")
	assert.Equal(t, 2, h.bookings.creates)
	assert.Contains(t, reply, h.state(t, "u1").LastBookingRef)
}

func TestHandleTurn_ConfirmationFallback(t *testing.T) {
	h := newHarness(t)
	h.bookings.confirmErr = errDown

	reply := h.say(t, "u1", "book a room", "tomorrow", "suite", "Jane Doe jane@example.com")
	id := h.state(t, "u1").LastBookingRef
	assert.Contains(t, reply, id)
	assert.Contains(t, reply, "Powersmy Luxury Hotel")
}

func TestHandleTurn_EndToEndRescheduling(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)

	reply := h.say(t, "u1", "I want to reschedule")
	assert.Contains(t, reply, "booking reference")
	assert.Equal(t, models.IntentRescheduling, h.state(t, "u1").CurrentIntent)

	reply = h.say(t, "u1", existing.ID)
	assert.Contains(t, reply, "new dates")
	assert.Equal(t, existing.ID, h.state(t, "u1").ActiveBookingRef)

	reply = h.say(t, "u1", "next week")
	assert.Equal(t, 1, h.bookings.updates)
	assert.Equal(t, 0, h.bookings.creates)
	require.NotNil(t, h.bookings.lastPatch.CheckInDate)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), *h.bookings.lastPatch.CheckInDate)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), *h.bookings.lastPatch.CheckOutDate)
	assert.Contains(t, reply, existing.ID)
	assert.Contains(t, reply, "2025-06-08")

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentNone, st.CurrentIntent)
	assert.Empty(t, st.ActiveBookingRef)
	assert.True(t, st.Slots.Empty())
}

func TestHandleTurn_RescheduleInOneMessage(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)

	reply := h.say(t, "u1", "please reschedule "+existing.ID+" to 2025-07-01 until 2025-07-03")
	assert.Equal(t, 1, h.bookings.updates)
	assert.Contains(t, reply, "2025-07-01")
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_RescheduleUnknownReference(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "I need to reschedule")
	reply := h.say(t, "u1", uuid.New().String())
	assert.Contains(t, reply, "couldn't find a booking")
	assert.Equal(t, 0, h.bookings.updates)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_RescheduleRejectedDatesKeepFlow(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)
	h.bookings.updateErr = booking.NewValidationError("check_in_date", "Those dates are sold out")

	reply := h.say(t, "u1", "reschedule", existing.ID, "next week")
	assert.Contains(t, reply, "sold out")

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentRescheduling, st.CurrentIntent)
	assert.Equal(t, existing.ID, st.ActiveBookingRef)
	assert.Nil(t, st.Slots.NewDates)
	assert.Equal(t, "Those dates are sold out", st.LastError)
}

func TestHandleTurn_CancellationOfUnknownBooking(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "I want to cancel my booking")

	reply := h.say(t, "u1", uuid.New().String())
	assert.Contains(t, reply, "couldn't find a booking")
	assert.Equal(t, 0, h.bookings.deletes)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_DateIsNotABookingReference(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "I want to cancel my booking")

	reply := h.say(t, "u1", "2025-06-10")
	assert.Contains(t, reply, "couldn't find a booking reference")
	assert.Equal(t, 0, h.bookings.gets)

	st := h.state(t, "u1")
	assert.Equal(t, models.IntentCancellation, st.CurrentIntent)
	assert.Empty(t, st.ActiveBookingRef)
}

func TestHandleTurn_CancellationConfirmed(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)

	reply := h.say(t, "u1", "cancel booking "+existing.ID)
	assert.Contains(t, reply, "yes or no")
	assert.Equal(t, 0, h.bookings.deletes)

	reply = h.say(t, "u1", "maybe")
	assert.Contains(t, reply, "Please answer yes")
	assert.Equal(t, 0, h.bookings.deletes)

	reply = h.say(t, "u1", "yes")
	assert.Equal(t, 1, h.bookings.deletes)
	assert.Contains(t, reply, "cancelled")
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
	assert.NotContains(t, h.bookings.bookings, existing.ID)
}

func TestHandleTurn_CancellationDeclined(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)

	reply := h.say(t, "u1", "cancel", existing.ID, "no")
	assert.Equal(t, replyKeptBooking, reply)
	assert.Equal(t, 0, h.bookings.deletes)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_CancellationDeleteReportsMissing(t *testing.T) {
	h := newHarness(t)
	existing := h.bookings.seed(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), 3)
	h.say(t, "u1", "cancel", existing.ID)
	delete(h.bookings.bookings, existing.ID)

	reply := h.say(t, "u1", "yes")
	assert.Contains(t, reply, "couldn't find a booking")
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_ReferencePromptSuggestsLastBooking(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room", "tomorrow", "standard", "Jane Doe jane@example.com")
	id := h.state(t, "u1").LastBookingRef

	reply := h.say(t, "u1", "I want to cancel")
	assert.Contains(t, reply, id)
}

func TestHandleTurn_Inquiry(t *testing.T) {
	h := newHarness(t)
	reply := h.say(t, "u1", "What time is check-in?")
	assert.Equal(t, "Check-in is at 15:00.", reply)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)

	h.answerer.err = errDown
	reply = h.say(t, "u1", "Do you have parking?")
	assert.Equal(t, replyUnavailable, reply)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_UnknownIntent(t *testing.T) {
	h := newHarness(t)
	reply := h.say(t, "u1", "blorp")
	assert.Contains(t, reply, "book a room")
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)
}

func TestHandleTurn_ClassifierUnavailable(t *testing.T) {
	h := newHarness(t)
	h.classifier.err = ai.ErrUnavailable

	reply := h.say(t, "u1", "book a room")
	assert.Equal(t, replyUnavailable, reply)
	assert.Equal(t, models.IntentNone, h.state(t, "u1").CurrentIntent)

	h.classifier.err = nil
	reply = h.say(t, "u1", "book a room")
	assert.Contains(t, reply, "What dates")
}

func TestUnavailableWrapsCause(t *testing.T) {
	h := newHarness(t)
	out := h.engine.unavailable(&turn{userID: "u1"}, "booking", errDown)

	assert.Equal(t, KindCollaboratorUnavailable, out.kind)
	assert.True(t, out.discard)
	require.Error(t, out.err)
	assert.ErrorIs(t, out.err, ErrCollaboratorUnavailable)
	assert.ErrorIs(t, out.err, errDown)
	assert.Contains(t, out.err.Error(), "booking")
}

func TestHandleTurn_Abandon(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u1", "book a room", "tomorrow")

	reply := h.say(t, "u1", "start over")
	assert.Equal(t, replyAbandoned, reply)
	st := h.state(t, "u1")
	assert.Equal(t, models.IntentNone, st.CurrentIntent)
	assert.True(t, st.Slots.Empty())
	assert.Equal(t, 0, h.bookings.creates)
}

func TestHandleTurn_EmptyMessage(t *testing.T) {
	h := newHarness(t)
	reply := h.say(t, "u1", "   ")
	assert.Equal(t, replyEmpty, reply)
	assert.Equal(t, 0, h.classifier.calls)
}

func TestHandleTurn_UsersAreIndependent(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			for _, text := range []string{"book a room", "tomorrow", "standard", fmt.Sprintf("Guest %d g%d@example.com", i, i)} {
				h.engine.HandleTurn(context.Background(), user, text)
			}
		}(i)
	}
	wg.Wait()

	h.bookings.mu.Lock()
	assert.Equal(t, 10, h.bookings.creates)
	h.bookings.mu.Unlock()
	for i := 0; i < 10; i++ {
		st := h.state(t, fmt.Sprintf("user-%d", i))
		assert.Equal(t, models.IntentNone, st.CurrentIntent)
		assert.True(t, strings.HasPrefix(h.bookings.bookings[st.LastBookingRef].Guest.Email, fmt.Sprintf("g%d@", i)))
	}
}

func TestHandleTurn_TurnTimeout(t *testing.T) {
	h := newHarness(t)
	slow := &blockingClassifier{}
	h.engine.classifier = slow
	h.engine.turnTimeout = 10 * time.Millisecond

	reply := h.engine.HandleTurn(context.Background(), "u1", "book a room")
	assert.Equal(t, replyUnavailable, reply)
}

type blockingClassifier struct{}

func (blockingClassifier) ClassifyIntent(ctx context.Context, _ string) (models.Intent, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
