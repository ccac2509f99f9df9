package booking

import (
	"strings"
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListQuery describes a filtered, paginated view of one owner's bookings.
// Zero-valued filters are ignored.
type ListQuery struct {
	Status      models.BookingStatus
	ServiceType string // case-insensitive substring match
	DateFrom    *time.Time
	DateTo      *time.Time // inclusive
	Page        int
	PerPage     int
}

// Normalize clamps pagination parameters into range. Out-of-range values
// are clamped rather than rejected.
func (q *ListQuery) Normalize(defaultPerPage, maxPerPage int) {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if maxPerPage <= 0 {
		maxPerPage = MaxPerPage
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	q.ServiceType = normalizeToken(q.ServiceType)
}

// Offset returns the row offset for the normalized query.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// Page is one page of an owner's bookings together with the totals the
// client needs to paginate.
type Page struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
	Pages    int              `json:"pages"`
}

// normalizeToken lower-cases and trims a filter token. Service types are
// stored canonical lower-case, so filters compare in that form.
func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PageCount returns ceil(total/perPage), with 0 pages for an empty result.
func PageCount(total int64, perPage int) int {
	if total == 0 || perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
