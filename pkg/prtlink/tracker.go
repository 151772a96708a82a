// Package prtlink tracks the reflector room the repeater is currently linked to.
package prtlink

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prttui/events"
)

// Display receives the current room
type Display interface {
	SetRoom(room string)
}

// Tracker holds a single last-write-wins room value
type Tracker struct {
	mu      sync.RWMutex
	room    string
	display Display
	publish func(events.Event)
}

// NewTracker creates a tracker. display and publish may be nil.
func NewTracker(display Display, publish func(events.Event)) *Tracker {
	if publish == nil {
		publish = func(events.Event) {}
	}
	return &Tracker{display: display, publish: publish}
}

// Apply sets the room on Linked and clears it on Unlinked
func (t *Tracker) Apply(ev prtcall.LinkEvent) {
	var room string
	if ev.Action == prtcall.LinkLinked {
		room = ev.Room
	}

	t.mu.Lock()
	t.room = room
	if t.display != nil {
		t.display.SetRoom(room)
	}
	t.mu.Unlock()

	if room == "" {
		log.Debug("Reflector unlinked")
	} else {
		log.Debugf("Linked to %s", room)
	}
	t.publish(events.NewRoomEvent(room))
}

// Room returns the current room, empty when unlinked
func (t *Tracker) Room() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.room
}
