package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"teamhub-backend/internal/config"
)

// Event names published on user channels.
const (
	EventNotificationCreated = "notification.created"
)

// Event is the typed payload carried over the push transport.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Subscription is a live stream of events for one channel. Events()
// blocks until an event arrives or the subscription is closed.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Transport is the raw pub/sub relay. It owns no durable state.
type Transport interface {
	Publish(ctx context.Context, channel string, ev Event) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Gateway maps logical (recipient, event, payload) operations onto
// transport channels. When the transport is unconfigured every call is a
// no-op that logs a single warning; push is an optimization over polling,
// never a requirement.
type Gateway struct {
	transport Transport
	prefix    string
	warnOnce  sync.Once
}

func NewGateway(cfg *config.Config) *Gateway {
	g := &Gateway{prefix: cfg.Push.ChannelPrefix}
	if cfg.Push.Addr == "" {
		return g
	}
	g.transport = newRedisTransport(cfg.Push)
	return g
}

// NewGatewayWithTransport wires an explicit transport. Tests use this to
// substitute a fake; a nil transport yields a disabled gateway.
func NewGatewayWithTransport(t Transport, channelPrefix string) *Gateway {
	return &Gateway{transport: t, prefix: channelPrefix}
}

func (g *Gateway) Enabled() bool {
	return g.transport != nil
}

// UserChannel is the transport channel carrying one recipient's events.
func (g *Gateway) UserChannel(recipientID string) string {
	return g.prefix + "user." + recipientID
}

func (g *Gateway) warnDisabled() {
	g.warnOnce.Do(func() {
		log.Println("Push transport not configured; realtime delivery disabled, clients fall back to polling")
	})
}

// NotifyUser publishes an event on the recipient's channel. Callers treat
// it as best-effort: a failure is returned for logging but must never
// abort the action that produced the notification.
func (g *Gateway) NotifyUser(ctx context.Context, recipientID, eventName string, payload interface{}) error {
	if g.transport == nil {
		g.warnDisabled()
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	ev := Event{Name: eventName, Payload: data}
	if err := g.transport.Publish(ctx, g.UserChannel(recipientID), ev); err != nil {
		return fmt.Errorf("failed to publish push event: %w", err)
	}
	return nil
}

// SubscribeUser opens the recipient's event stream. With push disabled it
// returns a subscription that never yields events, so consumers degrade
// to polling without special-casing.
func (g *Gateway) SubscribeUser(ctx context.Context, recipientID string) (Subscription, error) {
	if g.transport == nil {
		g.warnDisabled()
		return noopSubscription{}, nil
	}
	return g.transport.Subscribe(ctx, g.UserChannel(recipientID))
}

// noopSubscription is the disabled-push handle. Its nil events channel
// blocks forever, which is exactly the contract consumers already handle.
type noopSubscription struct{}

func (noopSubscription) Events() <-chan Event { return nil }
func (noopSubscription) Close() error         { return nil }
