package notifications

import (
	"context"
	"sync"

	"promptd/internal/domain"
)

const defaultEventBuffer = 16

// EventHub fans events out to subscribers. Slow subscribers drop events rather than
// blocking publishers.
type EventHub struct {
	mu      sync.RWMutex
	subs    map[chan domain.Event]struct{}
	metrics domain.Metrics
}

func NewEventHub(metrics domain.Metrics) *EventHub {
	return &EventHub{
		subs:    make(map[chan domain.Event]struct{}),
		metrics: metrics,
	}
}

func (h *EventHub) Publish(evt domain.Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a subscriber until ctx is done, at which point the channel closes.
func (h *EventHub) Subscribe(ctx context.Context) <-chan domain.Event {
	ch := make(chan domain.Event, defaultEventBuffer)
	if h == nil {
		close(ch)
		return ch
	}

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.AddEventSubscribers(1)
	}

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.AddEventSubscribers(-1)
		}
	}()

	return ch
}

// Subscribers returns the current subscriber count.
func (h *EventHub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var _ domain.EventPublisher = (*EventHub)(nil)
