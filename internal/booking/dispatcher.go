package booking

import (
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

type EventKind string

const (
	EventBookingCreated   EventKind = "booking.created"
	EventBookingUpdated   EventKind = "booking.updated"
	EventBookingCancelled EventKind = "booking.cancelled"
)

// Event is the immutable payload handed to the notification dispatcher
// after a successful commit.
type Event struct {
	ID           string         `json:"id"`
	Kind         EventKind      `json:"kind"`
	OwnerID      uint           `json:"ownerId"`
	OwnerContact string         `json:"ownerContact"`
	Booking      models.Booking `json:"booking"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

// Dispatcher accepts fire-and-forget notification tasks. Dispatch must not
// block on delivery, and its failure never affects the operation that
// produced the event.
type Dispatcher interface {
	Dispatch(ev Event) error
}
