package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cservice/cservice-backend/internal/booking"
)

// respondError maps each domain error kind to its own status code:
//
//	ValidationError        400
//	PolicyViolationError   403
//	NotFoundError          404
//	ConflictError          409
//	InvalidTransitionError 422
//	anything else          500
//
// Not-found deliberately covers bookings owned by other users, so the
// response never reveals whether the id exists.
func respondError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		notFound   *booking.NotFoundError
		conflict   *booking.ConflictError
		transition *booking.InvalidTransitionError
		policy     *booking.PolicyViolationError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(400, gin.H{"error": validation.Error()})
	case errors.As(err, &policy):
		c.JSON(403, gin.H{"error": policy.Error()})
	case errors.As(err, &notFound):
		c.JSON(404, gin.H{"error": "Booking not found"})
	case errors.As(err, &conflict):
		c.JSON(409, gin.H{"error": "This slot is already booked"})
	case errors.As(err, &transition):
		c.JSON(422, gin.H{"error": transition.Error()})
	default:
		c.JSON(500, gin.H{"error": "Something went wrong"})
	}
}
