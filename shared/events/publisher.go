package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Account lifecycle event types.
const (
	UserRegistered      = "user.registered"
	UserPasswordReset   = "user.password_reset"
	UserPasswordUpdated = "user.password_updated"
	UserDeleted         = "user.deleted"
)

// Event is the envelope written to the stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// UserEventData is the payload of every account lifecycle event.
type UserEventData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a publisher that appends to stream.
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, data any) error {
	eventJSON, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": eventJSON},
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event. Used when no Redis address is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
