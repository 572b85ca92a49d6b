package syncengine

import (
	"context"
	"log"
	"sync"
	"time"

	"teamhub-backend/internal/push"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 30 * time.Second

// CountSource returns the recipient's current unread count. It is the
// polling read that makes convergence independent of push delivery.
type CountSource func(ctx context.Context) (int, error)

// Options configure the engine's callbacks. All callbacks run on the
// engine's single goroutine and must be quick. Consumers must be
// idempotent: the same logical update can arrive once via push and again
// on the next poll tick, and nothing here de-duplicates the two.
type Options struct {
	// Interval between poll ticks. Defaults to DefaultInterval.
	Interval time.Duration
	// OnCount is invoked with the unread count after every successful poll.
	OnCount func(count int)
	// OnNew is invoked when the count strictly increased since the
	// previous successful poll. It never fires on the priming poll.
	OnNew func(count, delta int)
	// OnEvent is invoked for every inbound push event.
	OnEvent func(ev push.Event)
}

// Engine reconciles client-visible unread state with the server through
// two independent signal sources: a fixed-interval poll loop and an
// optional push subscription. No ordering is assumed between the two.
type Engine struct {
	source      CountSource
	gateway     *push.Gateway
	recipientID string
	opts        Options

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}

	primed    bool
	lastCount int
}

func New(source CountSource, gateway *push.Gateway, recipientID string, opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Engine{
		source:      source,
		gateway:     gateway,
		recipientID: recipientID,
		opts:        opts,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins polling and, when push is available, subscribes to the
// recipient's channel. A subscription failure degrades silently to
// polling-only. Start may be called once.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	var sub push.Subscription
	if e.gateway != nil {
		s, err := e.gateway.SubscribeUser(ctx, e.recipientID)
		if err != nil {
			log.Printf("Push subscription unavailable, continuing with polling only: %v", err)
		} else {
			sub = s
		}
	}

	go e.run(ctx, sub)
}

// Stop tears the engine down: the ticker is released, the subscription
// closed, and the loop goroutine exited before Stop returns. Safe to call
// more than once and before Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
	started := e.started
	e.mu.Unlock()

	if started {
		<-e.done
	}
}

func (e *Engine) run(ctx context.Context, sub push.Subscription) {
	defer close(e.done)

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	var events <-chan push.Event
	if sub != nil {
		events = sub.Events()
		defer sub.Close()
	}

	// Prime the baseline before the first interval elapses.
	e.poll(ctx)

	// Polls run synchronously on this goroutine, so a slow read cannot
	// overlap the next tick; the ticker drops ticks that fire meanwhile.
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
			e.poll(ctx)
		case ev, ok := <-events:
			if !ok {
				// Transport stream ended; polling remains the backstop.
				events = nil
				continue
			}
			if e.opts.OnEvent != nil {
				e.opts.OnEvent(ev)
			}
		}
	}
}

func (e *Engine) poll(ctx context.Context) {
	count, err := e.source(ctx)
	if err != nil {
		// Transient by contract; the next tick retries.
		log.Printf("Unread count poll failed: %v", err)
		return
	}

	if e.primed && count > e.lastCount && e.opts.OnNew != nil {
		e.opts.OnNew(count, count-e.lastCount)
	}
	e.primed = true
	e.lastCount = count

	if e.opts.OnCount != nil {
		e.opts.OnCount(count)
	}
}
