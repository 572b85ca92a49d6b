package syncengine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"teamhub-backend/internal/push"
)

func countSource(value *atomic.Int64, polls *atomic.Int64) CountSource {
	return func(_ context.Context) (int, error) {
		polls.Add(1)
		return int(value.Load()), nil
	}
}

func waitFor(t *testing.T, ch <-chan int, what string) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return 0
	}
}

func TestFirstPollPrimesWithoutNewSignal(t *testing.T) {
	var value, polls atomic.Int64
	value.Store(5)

	counts := make(chan int, 16)
	news := make(chan int, 16)

	e := New(countSource(&value, &polls), nil, "user-1", Options{
		Interval: 10 * time.Millisecond,
		OnCount:  func(count int) { counts <- count },
		OnNew:    func(_, delta int) { news <- delta },
	})
	e.Start(context.Background())
	defer e.Stop()

	if got := waitFor(t, counts, "priming count"); got != 5 {
		t.Errorf("expected primed count 5, got %d", got)
	}
	select {
	case delta := <-news:
		t.Errorf("priming poll fired OnNew with delta %d", delta)
	default:
	}
}

func TestIncreaseFiresNewSignal(t *testing.T) {
	var value, polls atomic.Int64
	value.Store(1)

	counts := make(chan int, 16)
	news := make(chan int, 16)

	e := New(countSource(&value, &polls), nil, "user-1", Options{
		Interval: 10 * time.Millisecond,
		OnCount:  func(count int) { counts <- count },
		OnNew:    func(_, delta int) { news <- delta },
	})
	e.Start(context.Background())
	defer e.Stop()

	waitFor(t, counts, "priming count")
	value.Store(3)

	if delta := waitFor(t, news, "new-notification signal"); delta != 2 {
		t.Errorf("expected delta 2, got %d", delta)
	}
}

func TestDecreaseUpdatesCountWithoutNewSignal(t *testing.T) {
	var value, polls atomic.Int64
	value.Store(3)

	counts := make(chan int, 16)
	news := make(chan int, 16)

	e := New(countSource(&value, &polls), nil, "user-1", Options{
		Interval: 10 * time.Millisecond,
		OnCount:  func(count int) { counts <- count },
		OnNew:    func(_, delta int) { news <- delta },
	})
	e.Start(context.Background())
	defer e.Stop()

	waitFor(t, counts, "priming count")

	// Cross-device mark-as-read shows up as a decrease.
	value.Store(1)
	for {
		if got := waitFor(t, counts, "decreased count"); got == 1 {
			break
		}
	}
	select {
	case delta := <-news:
		t.Errorf("decrease fired OnNew with delta %d", delta)
	default:
	}
}

func TestPollErrorIsTransient(t *testing.T) {
	var calls atomic.Int64
	counts := make(chan int, 16)

	source := func(_ context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("store unavailable")
		}
		return 7, nil
	}

	e := New(source, nil, "user-1", Options{
		Interval: 10 * time.Millisecond,
		OnCount:  func(count int) { counts <- count },
	})
	e.Start(context.Background())
	defer e.Stop()

	if got := waitFor(t, counts, "recovered count"); got != 7 {
		t.Errorf("expected 7 after transient failure, got %d", got)
	}
}

func TestStopHaltsPolling(t *testing.T) {
	var value, polls atomic.Int64

	e := New(countSource(&value, &polls), nil, "user-1", Options{
		Interval: 5 * time.Millisecond,
	})
	e.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	e.Stop()

	after := polls.Load()
	time.Sleep(50 * time.Millisecond)
	if polls.Load() != after {
		t.Error("polling continued after Stop")
	}

	// Stop is idempotent.
	e.Stop()
}

func TestStopBeforeStartDoesNotHang(t *testing.T) {
	var value, polls atomic.Int64
	e := New(countSource(&value, &polls), nil, "user-1", Options{})

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop before Start hung")
	}
}

// memTransport is an in-process push transport for engine tests.
type memTransport struct {
	mu      sync.Mutex
	subs    map[string]chan push.Event
	failSub bool
}

func newMemTransport() *memTransport {
	return &memTransport{subs: make(map[string]chan push.Event)}
}

func (t *memTransport) Publish(_ context.Context, channel string, ev push.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.subs[channel]; ok {
		ch <- ev
	}
	return nil
}

func (t *memTransport) Subscribe(_ context.Context, channel string) (push.Subscription, error) {
	if t.failSub {
		return nil, errors.New("transport unreachable")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan push.Event, 16)
	t.subs[channel] = ch
	return memSubscription{ch}, nil
}

type memSubscription struct {
	ch chan push.Event
}

func (s memSubscription) Events() <-chan push.Event { return s.ch }
func (s memSubscription) Close() error              { return nil }

func TestPushEventsReachHandler(t *testing.T) {
	transport := newMemTransport()
	gateway := push.NewGatewayWithTransport(transport, "teamhub.")

	var value, polls atomic.Int64
	events := make(chan push.Event, 16)

	e := New(countSource(&value, &polls), gateway, "user-1", Options{
		Interval: time.Hour, // push only; one priming poll
		OnEvent:  func(ev push.Event) { events <- ev },
	})
	e.Start(context.Background())
	defer e.Stop()

	// Give the engine a moment to subscribe before publishing.
	deadline := time.Now().Add(time.Second)
	for {
		transport.mu.Lock()
		_, subscribed := transport.subs["teamhub.user.user-1"]
		transport.mu.Unlock()
		if subscribed || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := gateway.NotifyUser(context.Background(), "user-1", push.EventNotificationCreated, "ping"); err != nil {
		t.Fatalf("NotifyUser failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Name != push.EventNotificationCreated {
			t.Errorf("expected %s, got %s", push.EventNotificationCreated, ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("push event never reached handler")
	}
}

func TestSubscriptionFailureFallsBackToPolling(t *testing.T) {
	transport := newMemTransport()
	transport.failSub = true
	gateway := push.NewGatewayWithTransport(transport, "teamhub.")

	var value, polls atomic.Int64
	value.Store(2)
	counts := make(chan int, 16)

	e := New(countSource(&value, &polls), gateway, "user-1", Options{
		Interval: 10 * time.Millisecond,
		OnCount:  func(count int) { counts <- count },
	})
	e.Start(context.Background())
	defer e.Stop()

	// Polling still converges even though the subscription failed.
	if got := waitFor(t, counts, "polled count"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}
