package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// validTransitions defines the lifecycle of a booking. Cancelled and
// completed are terminal: nothing moves out of them.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true if the booking counts toward slot occupancy.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) String() string {
	return string(s)
}

// ActiveStatuses lists the statuses that occupy a slot, in the form the
// database layer needs for IN clauses.
func ActiveStatuses() []string {
	return []string{string(BookingStatusPending), string(BookingStatusConfirmed)}
}

type ServiceType string

const (
	ServiceTypeConsultation ServiceType = "consultation"
	ServiceTypeDelivery     ServiceType = "delivery"
	ServiceTypeMeeting      ServiceType = "meeting"
	ServiceTypeProject      ServiceType = "project"
)

var serviceTypes = map[string]ServiceType{
	"consultation": ServiceTypeConsultation,
	"delivery":     ServiceTypeDelivery,
	"meeting":      ServiceTypeMeeting,
	"project":      ServiceTypeProject,
}

// ParseServiceType normalizes raw input to a canonical service type.
// Matching is case-insensitive; anything outside the fixed set is rejected.
func ParseServiceType(raw string) (ServiceType, bool) {
	st, ok := serviceTypes[strings.ToLower(strings.TrimSpace(raw))]
	return st, ok
}

type Booking struct {
	gorm.Model
	OwnerID      uint          `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Owner        User          `json:"-" gorm:"foreignKey:OwnerID"`
	ServiceType  ServiceType   `json:"serviceType" gorm:"column:service_type;not null;index"`
	Title        string        `json:"title" gorm:"column:title"`
	Details      string        `json:"details" gorm:"column:details;not null;default:''"`
	ScheduledFor time.Time     `json:"scheduledFor" gorm:"column:scheduled_for;not null;index"`
	Status       BookingStatus `json:"status" gorm:"column:status;not null;default:'pending';index"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
