package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/cservice/cservice-backend/internal/booking"
	"github.com/cservice/cservice-backend/internal/services"
	"github.com/cservice/cservice-backend/pkg/utils"
)

const TypeBookingEvent = "booking:event"

func NewBookingEventTask(ev booking.Event) (*asynq.Task, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingEvent, b), nil
}

// AsynqDispatcher implements booking.Dispatcher by enqueueing the event for
// the background worker. Enqueue failures surface to the caller only as a
// log line; the booking operation has already committed.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

func (d *AsynqDispatcher) Dispatch(ev booking.Event) error {
	task, err := NewBookingEventTask(ev)
	if err != nil {
		return err
	}
	_, err = d.client.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("notifications"))
	return err
}

// BookingEventHandler delivers committed booking events: an email to the
// owner and a redis publish for connected websocket clients.
type BookingEventHandler struct {
	log *zap.Logger
}

func NewBookingEventHandler(log *zap.Logger) *BookingEventHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingEventHandler{log: log}
}

func (h *BookingEventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var ev booking.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return fmt.Errorf("unmarshal booking event: %w", err)
	}

	if ev.OwnerContact != "" {
		if err := h.sendEmail(ev); err != nil {
			// Best-effort: log and keep going, the websocket fan-out
			// should still happen.
			h.log.Warn("booking notification email failed",
				zap.String("eventId", ev.ID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}

	if err := services.PublishBookingEvent(ctx, t.Payload()); err != nil {
		h.log.Warn("booking event publish failed",
			zap.String("eventId", ev.ID), zap.Error(err))
	}
	return nil
}

func (h *BookingEventHandler) sendEmail(ev booking.Event) error {
	switch ev.Kind {
	case booking.EventBookingCreated:
		return utils.SendBookingConfirmationEmail(ev.OwnerContact, ev.Booking)
	case booking.EventBookingUpdated:
		return utils.SendBookingUpdatedEmail(ev.OwnerContact, ev.Booking)
	case booking.EventBookingCancelled:
		return utils.SendBookingCancelledEmail(ev.OwnerContact, ev.Booking)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// NewWorker builds the asynq server that consumes the notification queue.
func NewWorker(redisURL string, log *zap.Logger) (*asynq.Server, *asynq.ServeMux, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis URL: %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"notifications": 1},
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeBookingEvent, NewBookingEventHandler(log))
	return srv, mux, nil
}
