package prtapi

import (
	"sync"

	"github.com/txn2/parrot/pkg/prtapi/types"
	"github.com/txn2/parrot/pkg/prttui/events"
)

// subscriberBuffer is the per-subscriber channel size. Events are dropped
// for a subscriber whose buffer is full.
const subscriberBuffer = 100

// EventStreamerAdapter adapts events.Bus to the EventStreamer interface
type EventStreamerAdapter struct {
	getEventBus func() *events.Bus

	mu          sync.Mutex
	subscribers int
}

// NewEventStreamerAdapter creates a new EventStreamerAdapter
func NewEventStreamerAdapter(getEventBus func() *events.Bus) *EventStreamerAdapter {
	return &EventStreamerAdapter{getEventBus: getEventBus}
}

// Subscribe returns a channel receiving every event
func (a *EventStreamerAdapter) Subscribe() (<-chan events.Event, func()) {
	return a.subscribe(func(bus *events.Bus, h events.Handler) events.UnsubscribeFunc {
		return bus.SubscribeAll(h)
	})
}

// SubscribeType returns a channel receiving events of one type
func (a *EventStreamerAdapter) SubscribeType(eventType events.EventType) (<-chan events.Event, func()) {
	return a.subscribe(func(bus *events.Bus, h events.Handler) events.UnsubscribeFunc {
		return bus.Subscribe(eventType, h)
	})
}

// Subscribers returns the number of active subscriptions
func (a *EventStreamerAdapter) Subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribers
}

func (a *EventStreamerAdapter) subscribe(register func(*events.Bus, events.Handler) events.UnsubscribeFunc) (<-chan events.Event, func()) {
	var bus *events.Bus
	if a.getEventBus != nil {
		bus = a.getEventBus()
	}
	if bus == nil {
		// Return a closed channel if bus is not available
		ch := make(chan events.Event)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan events.Event, subscriberBuffer)
	unsubscribe := register(bus, func(e events.Event) {
		select {
		case ch <- e:
		default:
		}
	})

	a.mu.Lock()
	a.subscribers++
	a.mu.Unlock()

	// The channel is left open: the bus may be mid-dispatch when cancel runs
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			unsubscribe()
			a.mu.Lock()
			a.subscribers--
			a.mu.Unlock()
		})
	}
	return ch, cancel
}

var _ types.EventStreamer = (*EventStreamerAdapter)(nil)
