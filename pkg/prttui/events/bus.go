package events

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Handler receives dispatched events
type Handler func(Event)

// UnsubscribeFunc removes the handler it was returned for
type UnsubscribeFunc func()

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans monitor events out to the TUI, the API and the plain logger.
// Publishing never blocks the stream readers: when the queue is full the
// event is dropped and counted.
type Bus struct {
	mu       sync.RWMutex
	byType   map[EventType][]subscription
	wildcard []subscription
	nextID   uint64

	queue   chan Event
	stop    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewBus creates a bus that queues up to bufferSize events
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Bus{
		byType: make(map[EventType][]subscription),
		queue:  make(chan Event, bufferSize),
		stop:   make(chan struct{}),
	}
}

// Subscribe registers handler for one event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) UnsubscribeFunc {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.byType[eventType] = append(b.byType[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byType[eventType] = without(b.byType[eventType], id)
	}
}

// SubscribeAll registers handler for every event type
func (b *Bus) SubscribeAll(handler Handler) UnsubscribeFunc {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.wildcard = append(b.wildcard, subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.wildcard = without(b.wildcard, id)
	}
}

// without removes the subscription with id; order is not kept
func without(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			subs[i] = subs[len(subs)-1]
			return subs[:len(subs)-1]
		}
	}
	return subs
}

// Publish queues an event for dispatch. A full queue drops the event.
// Nothing is logged here: log entries are themselves published.
func (b *Bus) Publish(event Event) {
	select {
	case b.queue <- event:
	default:
		b.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Start dispatches queued events on a background goroutine until Stop
func (b *Bus) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case event := <-b.queue:
				b.dispatch(event)
			case <-b.stop:
				b.drain()
				return
			}
		}
	}()
}

// drain dispatches whatever is still queued
func (b *Bus) drain() {
	for {
		select {
		case event := <-b.queue:
			b.dispatch(event)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.byType[event.Type] {
		b.safeCall(s.handler, event)
	}
	for _, s := range b.wildcard {
		b.safeCall(s.handler, event)
	}
}

// safeCall keeps a panicking handler from stopping dispatch
func (b *Bus) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Event handler panic for %s: %v", event.Type, r)
		}
	}()
	handler(event)
}

// Stop dispatches the remaining queue and waits for the dispatcher to exit
func (b *Bus) Stop() {
	close(b.stop)
	b.wg.Wait()
}

// EventChan exposes the queue for callers that consume events directly
func (b *Bus) EventChan() <-chan Event {
	return b.queue
}
