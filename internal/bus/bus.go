// Package bus fans state-change events out to live dashboard subscribers.
// Delivery is at-most-once and never blocks the publisher: a full subscriber
// queue drops that subscriber's event, nothing else.
package bus

import (
	"sync"

	"github.com/google/uuid"

	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/metrics"
)

// DefaultBuffer is the per-subscriber queue size used by the gateway.
const DefaultBuffer = 64

// Subscription is one live subscriber's handle on the bus.
type Subscription struct {
	id string
	ch chan domain.Event
}

// ID identifies the subscription for logging.
func (s *Subscription) ID() string { return s.id }

// C is the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscription) C() <-chan domain.Event { return s.ch }

// Bus is the broadcast hub. Subscribing never replays past events; the only
// ordering promise is that each subscriber receives events in publish order.
type Bus struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber with the given queue size.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{id: uuid.New().String(), ch: make(chan domain.Event, buffer)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub]
	delete(b.subs, sub)
	b.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish delivers the event to every current subscriber without blocking.
// Publishing with zero subscribers is a no-op.
func (b *Bus) Publish(event domain.Event) {
	metrics.IncEventPublished(string(event.Type))
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			metrics.IncEventDropped(string(event.Type))
		}
	}
}

// Len reports the current subscriber count.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
