package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BookingEventsChannel carries committed booking events from the
// notification worker to the websocket hub.
const BookingEventsChannel = "booking:events"

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis(redisURL string) error {
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// PublishBookingEvent publishes a committed booking event for fan-out to
// connected websocket clients.
func PublishBookingEvent(ctx context.Context, payload []byte) error {
	return RedisClient.Publish(ctx, BookingEventsChannel, payload).Err()
}

// SubscribeBookingEvents subscribes to the booking event channel.
func SubscribeBookingEvents(ctx context.Context) *redis.PubSub {
	return RedisClient.Subscribe(ctx, BookingEventsChannel)
}
