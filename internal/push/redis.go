package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"teamhub-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

type redisTransport struct {
	client *redis.Client
}

func newRedisTransport(cfg config.PushConfig) *redisTransport {
	return &redisTransport{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (t *redisTransport) Publish(ctx context.Context, channel string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal push event: %w", err)
	}
	if err := t.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (t *redisTransport) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := t.client.Subscribe(ctx, channel)

	// Receive confirms the SUBSCRIBE before we hand out the stream, so an
	// unreachable broker surfaces here instead of as a silent dead channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Dropping malformed push event on %s: %v", channel, err)
				continue
			}
			events <- ev
		}
	}()

	return &redisSubscription{pubsub: pubsub, events: events}, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Event
}

func (s *redisSubscription) Events() <-chan Event { return s.events }

func (s *redisSubscription) Close() error {
	// Closing the PubSub ends pubsub.Channel(), which closes s.events.
	return s.pubsub.Close()
}
