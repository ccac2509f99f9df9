package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

// memStore is an in-memory Store for tests. A single mutex stands in for
// the database's transaction isolation: every unit of work runs alone.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	bookings map[uint]models.Booking
	emails   map[uint]string
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[uint]models.Booking),
		emails:   make(map[uint]string),
	}
}

type memTxn struct {
	s *memStore
}

func (t memTxn) HasConflict(at time.Time, excludeID uint) (bool, error) {
	for _, b := range t.s.bookings {
		if b.ID != excludeID && b.Status.IsActive() && b.ScheduledFor.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conflict, _ := memTxn{s}.HasConflict(b.ScheduledFor, 0)
	if conflict {
		return &ConflictError{Slot: b.ScheduledFor}
	}

	s.nextID++
	b.ID = s.nextID
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) Get(ctx context.Context, ownerID, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.OwnerID != ownerID {
		return nil, &NotFoundError{BookingID: id}
	}
	return &b, nil
}

func (s *memStore) Mutate(ctx context.Context, ownerID, id uint, fn func(tx Txn, b *models.Booking) error) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.OwnerID != ownerID {
		return nil, &NotFoundError{BookingID: id}
	}

	if err := fn(memTxn{s}, &b); err != nil {
		return nil, err
	}

	b.UpdatedAt = time.Now()
	s.bookings[id] = b
	return &b, nil
}

func (s *memStore) List(ctx context.Context, ownerID uint, q ListQuery) ([]models.Booking, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Booking
	for _, b := range s.bookings {
		if b.OwnerID != ownerID {
			continue
		}
		if q.Status != "" && b.Status != q.Status {
			continue
		}
		if q.ServiceType != "" && !containsFold(string(b.ServiceType), q.ServiceType) {
			continue
		}
		if q.DateFrom != nil && b.ScheduledFor.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && b.ScheduledFor.After(*q.DateTo) {
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ScheduledFor.After(matched[j].ScheduledFor)
	})

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *memStore) ActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.Status.IsActive() && !b.ScheduledFor.Before(from) && b.ScheduledFor.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out, nil
}

func (s *memStore) OwnerEmail(ctx context.Context, ownerID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email, ok := s.emails[ownerID]; ok {
		return email, nil
	}
	return fmt.Sprintf("user%d@example.com", ownerID), nil
}

// setStatus flips a booking's status directly, bypassing the lifecycle
// guards, to set up terminal-state fixtures.
func (s *memStore) setStatus(id uint, status models.BookingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bookings[id]
	b.Status = status
	s.bookings[id] = b
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// fixedClock pins the current time for deterministic guard tests.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// captureDispatcher records dispatched events.
type captureDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (d *captureDispatcher) Dispatch(ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *captureDispatcher) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}
