package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cservice/cservice-backend/internal/models"
)

// Config carries the deployment policy of the booking engine.
type Config struct {
	CancelWindow   time.Duration // minimum lead time for cancellation
	DefaultPerPage int
	MaxPerPage     int
}

// Service orchestrates the booking lifecycle: slot validation, conflict
// arbitration, status transitions and paginated views. Each operation is a
// single unit of work against the store; notifications go out only after
// the commit and never fail the operation.
type Service struct {
	store    Store
	calendar Calendar
	clock    Clock
	dispatch Dispatcher
	cfg      Config
	log      *zap.Logger
}

func NewService(store Store, calendar Calendar, clock Clock, dispatch Dispatcher, cfg Config, log *zap.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.CancelWindow <= 0 {
		cfg.CancelWindow = 2 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		calendar: calendar,
		clock:    clock,
		dispatch: dispatch,
		cfg:      cfg,
		log:      log,
	}
}

// Calendar exposes the slot policy the service was built with.
func (s *Service) Calendar() Calendar {
	return s.calendar
}

// CreateInput is the caller-supplied part of a new booking.
type CreateInput struct {
	ServiceType  string
	Title        string
	Details      string
	ScheduledFor time.Time
}

// Create validates the input, arbitrates the slot and inserts the booking
// in pending status.
func (s *Service) Create(ctx context.Context, ownerID uint, in CreateInput) (*models.Booking, error) {
	serviceType, ok := models.ParseServiceType(in.ServiceType)
	if !ok {
		return nil, &ValidationError{Field: "serviceType", Reason: fmt.Sprintf("unknown service type %q", in.ServiceType)}
	}
	if !in.ScheduledFor.After(s.clock.Now()) {
		return nil, &ValidationError{Field: "scheduledFor", Reason: "must be in the future"}
	}

	b := &models.Booking{
		OwnerID:      ownerID,
		ServiceType:  serviceType,
		Title:        in.Title,
		Details:      in.Details,
		ScheduledFor: in.ScheduledFor,
		Status:       models.BookingStatusPending,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notify(EventBookingCreated, b)
	return b, nil
}

// Get fetches one booking scoped to the caller.
func (s *Service) Get(ctx context.Context, ownerID, id uint) (*models.Booking, error) {
	return s.store.Get(ctx, ownerID, id)
}

// Update applies a partial patch to a mutable booking. A rescheduled time
// is re-validated and re-arbitrated inside the same unit of work, excluding
// the booking itself so it can keep its own slot.
func (s *Service) Update(ctx context.Context, ownerID, id uint, p Patch) (*models.Booking, error) {
	if p.Empty() {
		return nil, &ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	b, err := s.store.Mutate(ctx, ownerID, id, func(tx Txn, b *models.Booking) error {
		if b.Status.IsTerminal() {
			return &InvalidTransitionError{From: b.Status}
		}

		if p.ServiceType.Set {
			if !p.ServiceType.Valid {
				return &ValidationError{Field: "serviceType", Reason: "cannot be null"}
			}
			serviceType, ok := models.ParseServiceType(p.ServiceType.Value)
			if !ok {
				return &ValidationError{Field: "serviceType", Reason: fmt.Sprintf("unknown service type %q", p.ServiceType.Value)}
			}
			b.ServiceType = serviceType
		}
		if p.Title.Set {
			b.Title = p.Title.Value // null clears
		}
		if p.Details.Set {
			b.Details = p.Details.Value // null clears
		}
		if p.ScheduledFor.Set {
			if !p.ScheduledFor.Valid {
				return &ValidationError{Field: "scheduledFor", Reason: "cannot be null"}
			}
			at := p.ScheduledFor.Value
			if !at.After(s.clock.Now()) {
				return &ValidationError{Field: "scheduledFor", Reason: "must be in the future"}
			}
			conflict, err := tx.HasConflict(at, b.ID)
			if err != nil {
				return err
			}
			if conflict {
				return &ConflictError{Slot: at}
			}
			b.ScheduledFor = at
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(EventBookingUpdated, b)
	return b, nil
}

// Cancel moves a booking to cancelled, honoring the protected window. The
// row is never removed; cancellation is a status transition.
func (s *Service) Cancel(ctx context.Context, ownerID, id uint) (*models.Booking, error) {
	b, err := s.store.Mutate(ctx, ownerID, id, func(tx Txn, b *models.Booking) error {
		if !b.Status.CanTransitionTo(models.BookingStatusCancelled) {
			return &InvalidTransitionError{From: b.Status, To: models.BookingStatusCancelled}
		}
		if b.ScheduledFor.Sub(s.clock.Now()) < s.cfg.CancelWindow {
			return &PolicyViolationError{
				Reason: fmt.Sprintf("bookings cannot be cancelled less than %s before the scheduled time", s.cfg.CancelWindow),
			}
		}
		b.Status = models.BookingStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(EventBookingCancelled, b)
	return b, nil
}

// List returns the filtered, paginated view of the caller's bookings.
func (s *Service) List(ctx context.Context, ownerID uint, q ListQuery) (*Page, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", q.Status)}
	}
	q.Normalize(s.cfg.DefaultPerPage, s.cfg.MaxPerPage)

	bookings, total, err := s.store.List(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return &Page{
		Bookings: bookings,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		Pages:    PageCount(total, q.PerPage),
	}, nil
}

// AvailableSlots computes the free slots for one calendar day.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time) ([]time.Time, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	active, err := s.store.ActiveBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return s.calendar.AvailableSlots(date, active), nil
}

// notify hands the committed change to the dispatcher. The context is
// deliberately detached: the caller's request may already be gone, the
// commit stands either way.
func (s *Service) notify(kind EventKind, b *models.Booking) {
	if s.dispatch == nil {
		return
	}

	contact, err := s.store.OwnerEmail(context.Background(), b.OwnerID)
	if err != nil {
		s.log.Warn("could not resolve owner contact for notification",
			zap.Uint("bookingId", b.ID), zap.Error(err))
	}

	ev := Event{
		ID:           uuid.NewString(),
		Kind:         kind,
		OwnerID:      b.OwnerID,
		OwnerContact: contact,
		Booking:      *b,
		OccurredAt:   s.clock.Now(),
	}
	if err := s.dispatch.Dispatch(ev); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("kind", string(kind)), zap.Uint("bookingId", b.ID), zap.Error(err))
	}
}
