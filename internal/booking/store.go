package booking

import (
	"context"
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

// Txn is the view of a unit of work handed to mutation callbacks. Conflict
// checks made through it see the same isolation as the surrounding
// transaction, so a check-then-write cannot race with a concurrent insert.
type Txn interface {
	// HasConflict reports whether an active booking other than excludeID
	// is scheduled at exactly at.
	HasConflict(at time.Time, excludeID uint) (bool, error)
}

// Store is the persistence boundary of the booking engine. Every method is
// one atomic unit of work; on error nothing is partially applied.
//
// Create and any mutation that moves scheduled_for must guarantee that two
// concurrent writes for the same slot produce exactly one success and one
// ConflictError.
type Store interface {
	// Create inserts a new booking, failing with ConflictError if an
	// active booking already holds the slot.
	Create(ctx context.Context, b *models.Booking) error

	// Get fetches a booking scoped to its owner. A booking that exists
	// but belongs to someone else is a NotFoundError.
	Get(ctx context.Context, ownerID, id uint) (*models.Booking, error)

	// Mutate loads the owner's booking under a write lock, applies fn and
	// persists the result. fn errors abort the unit of work unchanged.
	Mutate(ctx context.Context, ownerID, id uint, fn func(tx Txn, b *models.Booking) error) (*models.Booking, error)

	// List returns the filtered page of the owner's bookings ordered by
	// scheduled_for descending, plus the total match count.
	List(ctx context.Context, ownerID uint, q ListQuery) ([]models.Booking, int64, error)

	// ActiveBetween returns all active bookings with scheduled_for in
	// [from, to).
	ActiveBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)

	// OwnerEmail resolves the contact address for notification dispatch.
	OwnerEmail(ctx context.Context, ownerID uint) (string, error)
}
