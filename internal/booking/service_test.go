package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cservice/cservice-backend/internal/models"
)

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *memStore, *captureDispatcher) {
	t.Helper()
	store := newMemStore()
	dispatch := &captureDispatcher{}
	svc := NewService(
		store,
		NewCalendar(9, 17, time.Hour),
		fixedClock{t: testNow},
		dispatch,
		Config{CancelWindow: 2 * time.Hour, DefaultPerPage: 20, MaxPerPage: 100},
		nil,
	)
	return svc, store, dispatch
}

func slotAt(hour int) time.Time {
	return time.Date(2026, 3, 11, hour, 0, 0, 0, time.UTC)
}

func TestCreateRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{
		ServiceType:  "Consultation", // mixed case on purpose
		Title:        "Quarterly review",
		Details:      "bring the Q1 numbers",
		ScheduledFor: slotAt(10),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, got.Status)
	assert.Equal(t, models.ServiceTypeConsultation, got.ServiceType)
	assert.Equal(t, "Quarterly review", got.Title)
	assert.Equal(t, "bring the Q1 numbers", got.Details)
	assert.True(t, got.ScheduledFor.Equal(slotAt(10)))
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestCreateRejectsUnknownServiceType(t *testing.T) {
	svc, _, dispatch := newTestService(t)

	_, err := svc.Create(context.Background(), 1, CreateInput{
		ServiceType:  "haircut",
		ScheduledFor: slotAt(10),
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, dispatch.Events())
}

func TestCreateRejectsPastTime(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, at := range []time.Time{testNow.Add(-time.Hour), testNow} {
		_, err := svc.Create(context.Background(), 1, CreateInput{
			ServiceType:  "meeting",
			ScheduledFor: at,
		})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
	}
}

func TestCreateConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2, CreateInput{ServiceType: "delivery", ScheduledFor: slotAt(10)})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)
	store.setStatus(b.ID, models.BookingStatusCancelled)

	_, err = svc.Create(ctx, 2, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)
}

func TestConcurrentCreateSameSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, uint(i+1), CreateInput{
				ServiceType:  "project",
				ScheduledFor: slotAt(14),
			})
		}(i)
	}
	wg.Wait()

	var conflicts, successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, 2, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)

	var notFound *NotFoundError

	_, err = svc.Get(ctx, 1, b.ID)
	require.ErrorAs(t, err, &notFound)

	patch := Patch{Title: Field[string]{Set: true, Valid: true, Value: "mine now"}}
	_, err = svc.Update(ctx, 1, b.ID, patch)
	require.ErrorAs(t, err, &notFound)

	_, err = svc.Cancel(ctx, 1, b.ID)
	require.ErrorAs(t, err, &notFound)

	// Owner still sees the untouched booking
	got, err := svc.Get(ctx, 2, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status)
	assert.Empty(t, got.Title)
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, CreateInput{
		ServiceType:  "meeting",
		Title:        "Standup",
		Details:      "daily sync",
		ScheduledFor: slotAt(10),
	})
	require.NoError(t, err)

	// Only the title is touched
	got, err := svc.Update(ctx, 1, b.ID, Patch{
		Title: Field[string]{Set: true, Valid: true, Value: "Retro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Retro", got.Title)
	assert.Equal(t, "daily sync", got.Details)
	assert.True(t, got.ScheduledFor.Equal(slotAt(10)))

	// Explicit null clears the title
	got, err = svc.Update(ctx, 1, b.ID, Patch{
		Title: Field[string]{Set: true, Valid: false},
	})
	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Equal(t, "daily sync", got.Details)
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 1, 1, Patch{})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateRejectsNullScheduledFor(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, b.ID, Patch{
		ScheduledFor: Field[time.Time]{Set: true, Valid: false},
	})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateReschedule(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(11)})
	require.NoError(t, err)

	// Moving onto another active booking's slot is a conflict
	_, err = svc.Update(ctx, 1, first.ID, Patch{
		ScheduledFor: Field[time.Time]{Set: true, Valid: true, Value: slotAt(11)},
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// A booking does not collide with itself
	got, err := svc.Update(ctx, 1, first.ID, Patch{
		ScheduledFor: Field[time.Time]{Set: true, Valid: true, Value: slotAt(10)},
	})
	require.NoError(t, err)
	assert.True(t, got.ScheduledFor.Equal(slotAt(10)))

	// Moving to a free slot works
	got, err = svc.Update(ctx, 1, first.ID, Patch{
		ScheduledFor: Field[time.Time]{Set: true, Valid: true, Value: slotAt(12)},
	})
	require.NoError(t, err)
	assert.True(t, got.ScheduledFor.Equal(slotAt(12)))
}

func TestTerminalStateImmutability(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	for i, status := range []models.BookingStatus{models.BookingStatusCancelled, models.BookingStatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			// separate days so the fixtures never collide with each other
			b, err := svc.Create(ctx, 1, CreateInput{
				ServiceType:  "meeting",
				Title:        "frozen",
				ScheduledFor: slotAt(9).Add(time.Duration(i) * 24 * time.Hour),
			})
			require.NoError(t, err)
			store.setStatus(b.ID, status)

			_, err = svc.Update(ctx, 1, b.ID, Patch{
				Title: Field[string]{Set: true, Valid: true, Value: "thawed"},
			})
			var transition *InvalidTransitionError
			require.ErrorAs(t, err, &transition)

			_, err = svc.Cancel(ctx, 1, b.ID)
			require.ErrorAs(t, err, &transition)

			got, err := svc.Get(ctx, 1, b.ID)
			require.NoError(t, err)
			assert.Equal(t, "frozen", got.Title)
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestCancelWindow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// 119 minutes ahead: inside the protected window
	tooClose, err := svc.Create(ctx, 1, CreateInput{
		ServiceType:  "consultation",
		ScheduledFor: testNow.Add(119 * time.Minute),
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, 1, tooClose.ID)
	var policy *PolicyViolationError
	require.ErrorAs(t, err, &policy)

	got, err := svc.Get(ctx, 1, tooClose.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status)

	// 121 minutes ahead: cancellable
	farEnough, err := svc.Create(ctx, 1, CreateInput{
		ServiceType:  "consultation",
		ScheduledFor: testNow.Add(121 * time.Minute),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, 1, farEnough.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// A second cancel hits the terminal guard, not the window
	_, err = svc.Cancel(ctx, 1, farEnough.ID)
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
}

func TestListPaginationArithmetic(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, 1, CreateInput{
			ServiceType:  "delivery",
			ScheduledFor: slotAt(9).Add(time.Duration(i) * time.Hour * 24),
		})
		require.NoError(t, err)
	}

	page1, err := svc.List(ctx, 1, ListQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page1.Total)
	assert.Equal(t, 3, page1.Pages)
	assert.Len(t, page1.Bookings, 10)

	page3, err := svc.List(ctx, 1, ListQuery{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Bookings, 5)

	page4, err := svc.List(ctx, 1, ListQuery{Page: 4, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page4.Bookings, 0)
	assert.Equal(t, int64(25), page4.Total)
}

func TestListOrderingAndFilters(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	early, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(9)})
	require.NoError(t, err)
	late, err := svc.Create(ctx, 1, CreateInput{ServiceType: "consultation", ScheduledFor: slotAt(15)})
	require.NoError(t, err)
	cancelled, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(12)})
	require.NoError(t, err)
	store.setStatus(cancelled.ID, models.BookingStatusCancelled)

	// Someone else's booking never shows up
	_, err = svc.Create(ctx, 2, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(16)})
	require.NoError(t, err)

	all, err := svc.List(ctx, 1, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all.Bookings, 3)
	assert.Equal(t, late.ID, all.Bookings[0].ID) // most recent first
	assert.Equal(t, early.ID, all.Bookings[2].ID)

	pending, err := svc.List(ctx, 1, ListQuery{Status: models.BookingStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending.Bookings, 2)

	// Substring, case-insensitive service-type filter
	consult, err := svc.List(ctx, 1, ListQuery{ServiceType: "CONSULT"})
	require.NoError(t, err)
	require.Len(t, consult.Bookings, 1)
	assert.Equal(t, late.ID, consult.Bookings[0].ID)

	from := slotAt(11)
	to := slotAt(15)
	ranged, err := svc.List(ctx, 1, ListQuery{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, ranged.Bookings, 2) // inclusive upper bound
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.List(context.Background(), 1, ListQuery{Status: "teleported"})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestNotificationsDispatchedAfterCommitOnly(t *testing.T) {
	svc, _, dispatch := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 2, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.Error(t, err)

	_, err = svc.Cancel(ctx, 1, b.ID)
	require.NoError(t, err)

	events := dispatch.Events()
	require.Len(t, events, 2) // failed create dispatched nothing

	created, cancelled := events[0], events[1]
	assert.Equal(t, EventBookingCreated, created.Kind)
	assert.Equal(t, uint(1), created.OwnerID)
	assert.Equal(t, "user1@example.com", created.OwnerContact)
	assert.NotEmpty(t, created.ID)

	assert.Equal(t, EventBookingCancelled, cancelled.Kind)
	assert.Equal(t, b.ID, cancelled.Booking.ID)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Booking.Status)
}

func TestAvailableSlots(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	b, err := svc.Create(ctx, 1, CreateInput{ServiceType: "meeting", ScheduledFor: slotAt(10)})
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, day)
	require.NoError(t, err)
	require.Len(t, slots, 7)
	for _, s := range slots {
		assert.False(t, s.Equal(slotAt(10)), "booked slot %s should be excluded", s)
	}

	// A cancelled booking no longer occupies its slot
	store.setStatus(b.ID, models.BookingStatusCancelled)
	slots, err = svc.AvailableSlots(ctx, day)
	require.NoError(t, err)
	assert.Len(t, slots, 8)
}

func TestCreateManySlotsOneDay(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Fill the whole day, then verify nothing is left
	for hour := 9; hour < 17; hour++ {
		_, err := svc.Create(ctx, 1, CreateInput{
			ServiceType:  "project",
			ScheduledFor: slotAt(hour),
		})
		require.NoError(t, err, fmt.Sprintf("slot %02d:00", hour))
	}

	slots, err := svc.AvailableSlots(ctx, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, slots)
}
