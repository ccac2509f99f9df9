package booking

import (
	"fmt"
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

// ValidationError reports malformed input: an unknown service type, a
// scheduled time that is not in the future, or out-of-range parameters.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a booking that is absent or not owned by the caller.
// The two causes are deliberately indistinguishable.
type NotFoundError struct {
	BookingID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %d not found", e.BookingID)
}

// ConflictError reports a slot that is already actively booked.
type ConflictError struct {
	Slot time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s is already booked", e.Slot.Format(time.RFC3339))
}

// InvalidTransitionError reports a mutation attempted on a booking whose
// status does not allow it.
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("booking in terminal status %q cannot be modified", e.From)
	}
	return fmt.Sprintf("cannot transition booking from %q to %q", e.From, e.To)
}

// PolicyViolationError reports an operation that is well-formed and
// state-legal but blocked by business policy, such as cancelling inside
// the protected window.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return e.Reason
}

// StoreError wraps an unexpected persistence failure. The unit of work it
// came from has been rolled back in full.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
