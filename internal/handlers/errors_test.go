package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cservice/cservice-backend/internal/booking"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &booking.ValidationError{Field: "serviceType", Reason: "unknown"}, 400},
		{"policy", &booking.PolicyViolationError{Reason: "too close to start"}, 403},
		{"not found", &booking.NotFoundError{BookingID: 7}, 404},
		{"conflict", &booking.ConflictError{Slot: time.Now()}, 409},
		{"transition", &booking.InvalidTransitionError{From: "completed", To: "cancelled"}, 422},
		{"wrapped store error", &booking.StoreError{Op: "list", Err: errors.New("connection reset")}, 500},
		{"unknown", errors.New("boom"), 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestRespondErrorUnwrapsStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := &booking.StoreError{Op: "get", Err: &booking.NotFoundError{BookingID: 3}}
	respondError(c, wrapped)

	assert.Equal(t, 404, w.Code)
	assert.NotContains(t, w.Body.String(), "3", "response must not leak the id")
}
