package events

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), UserRegistered, UserEventData{UserID: "1"}))
}

func TestRedisPublisher_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	p := NewRedisPublisher(client, "account-events")

	err := p.Publish(context.Background(), UserDeleted, UserEventData{UserID: "1", Email: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
}
