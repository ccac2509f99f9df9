package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cservice/cservice-backend/internal/booking"
	"github.com/cservice/cservice-backend/internal/metrics"
	"github.com/cservice/cservice-backend/internal/models"
)

// CreateBooking handles the creation of a new booking
func CreateBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		var input struct {
			ServiceType  string    `json:"serviceType" binding:"required"`
			Title        string    `json:"title"`
			Details      string    `json:"details"`
			ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		b, err := svc.Create(c.Request.Context(), userId, booking.CreateInput{
			ServiceType:  input.ServiceType,
			Title:        input.Title,
			Details:      input.Details,
			ScheduledFor: input.ScheduledFor,
		})
		if err != nil {
			var conflict *booking.ConflictError
			if errors.As(err, &conflict) {
				metrics.IncBookingConflict()
			}
			respondError(c, err)
			return
		}

		metrics.IncBookingCreated(string(b.ServiceType))
		c.JSON(201, b)
	}
}

// ListBookings retrieves a filtered, paginated page of the caller's bookings
func ListBookings(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		q := booking.ListQuery{
			Status:      models.BookingStatus(c.Query("status")),
			ServiceType: c.Query("serviceType"),
		}
		if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
			q.Page = page
		}
		if perPage, err := strconv.Atoi(c.DefaultQuery("perPage", "0")); err == nil {
			q.PerPage = perPage
		}
		if from, _, ok := parseTimeParam(c.Query("dateFrom")); ok {
			q.DateFrom = &from
		}
		if to, dateOnly, ok := parseTimeParam(c.Query("dateTo")); ok {
			if dateOnly {
				// The range is inclusive; a bare date covers its whole day.
				to = to.Add(24*time.Hour - time.Nanosecond)
			}
			q.DateTo = &to
		}

		page, err := svc.List(c.Request.Context(), userId, q)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, page)
	}
}

// GetBooking retrieves a single booking owned by the caller
func GetBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, ok := parseIDParam(c)
		if !ok {
			return
		}

		b, err := svc.Get(c.Request.Context(), userId, bookingId)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, b)
	}
}

// UpdateBooking applies a partial update to a booking
func UpdateBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, ok := parseIDParam(c)
		if !ok {
			return
		}

		var patch booking.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		b, err := svc.Update(c.Request.Context(), userId, bookingId, patch)
		if err != nil {
			var conflict *booking.ConflictError
			if errors.As(err, &conflict) {
				metrics.IncBookingConflict()
			}
			respondError(c, err)
			return
		}

		c.JSON(200, b)
	}
}

// CancelBooking cancels a booking. The record is kept; only its status moves.
func CancelBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		bookingId, ok := parseIDParam(c)
		if !ok {
			return
		}

		b, err := svc.Cancel(c.Request.Context(), userId, bookingId)
		if err != nil {
			respondError(c, err)
			return
		}

		metrics.IncBookingCancelled()
		c.JSON(200, b)
	}
}

// GetAvailableSlots lists the free slots for one calendar day
func GetAvailableSlots(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		dateStr := c.Query("date")
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(400, gin.H{"error": "date must be in YYYY-MM-DD format"})
			return
		}

		slots, err := svc.AvailableSlots(c.Request.Context(), date)
		if err != nil {
			respondError(c, err)
			return
		}
		if slots == nil {
			slots = []time.Time{}
		}

		c.JSON(200, gin.H{"date": dateStr, "slots": slots})
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid booking ID"})
		return 0, false
	}
	return uint(id), true
}

func parseTimeParam(s string) (t time.Time, dateOnly, ok bool) {
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
