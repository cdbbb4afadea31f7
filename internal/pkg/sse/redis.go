package sse

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "notifications:sse"

// redisEnvelope is the message shape carried over Redis Pub/Sub
type redisEnvelope struct {
	OwnerID string             `json:"ownerId"`
	Event   notification.Event `json:"event"`
	SentAt  time.Time          `json:"sentAt"`
}

const maxBridgeBackoff = 30 * time.Second

// RedisBridge lets several API instances share live events.
// While Run is subscribed, Publish goes to Redis and Run replays every message
// into the local Hub, including the ones this instance published. Otherwise
// Publish delivers to the local Hub only.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	running atomic.Bool
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub) *RedisBridge {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBridge{client: client, channel: channel, hub: hub}
}

func (b *RedisBridge) Publish(ownerID string, event notification.Event) {
	if !b.running.Load() {
		b.hub.Publish(ownerID, event)
		return
	}

	body, err := json.Marshal(redisEnvelope{OwnerID: ownerID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		slog.Error("sse: encode redis envelope failed", "error", err)
		b.hub.Publish(ownerID, event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		// Local subscribers still get the event.
		slog.Error("sse: publish redis message failed", "channel", b.channel, "error", err)
		b.hub.Publish(ownerID, event)
	}
}

// Run blocks until ctx is done or the subscription fails
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	slog.Info("sse: redis bridge subscribed", "channel", b.channel)

	b.running.Store(true)
	defer b.running.Store(false)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Error("sse: decode redis message failed", "channel", b.channel, "error", err)
				continue
			}
			if env.OwnerID == "" || env.Event.Type == "" {
				continue
			}
			b.hub.Publish(env.OwnerID, env.Event)
		}
	}
}

// Running reports whether Run is subscribed and replaying messages
func (b *RedisBridge) Running() bool {
	return b.running.Load()
}

// Serve keeps Run alive until ctx is done, retrying with exponential backoff.
// Events stay local while the subscription is down.
func (b *RedisBridge) Serve(ctx context.Context) {
	backoff := time.Second
	for {
		started := time.Now()
		err := b.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > maxBridgeBackoff {
			backoff = time.Second
		}

		slog.Error("sse: redis bridge down, live events are local-only", "channel", b.channel, "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBridgeBackoff {
			backoff = maxBridgeBackoff
		}
	}
}
