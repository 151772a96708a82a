// Package prtreducer drains queued call events onto the visible display,
// one event per tick.
package prtreducer

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prttui/events"
)

// DefaultInterval is the drain period
const DefaultInterval = 100 * time.Millisecond

// DedupMode selects which fields make two events content-identical
type DedupMode int

const (
	// DedupFull compares timestamp, source and callsign
	DedupFull DedupMode = iota
	// DedupIgnoreTimestamp compares source and callsign only
	DedupIgnoreTimestamp
)

func (m DedupMode) String() string {
	switch m {
	case DedupIgnoreTimestamp:
		return "ignore-timestamp"
	default:
		return "full"
	}
}

// ParseDedupMode parses "full" or "ignore-timestamp". Empty means full.
func ParseDedupMode(s string) (DedupMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return DedupFull, true
	case "ignore-timestamp", "callsign", "source-callsign":
		return DedupIgnoreTimestamp, true
	default:
		return DedupFull, false
	}
}

func (m DedupMode) key(ev prtcall.CallEvent) string {
	if m == DedupIgnoreTimestamp {
		return ev.KeyWithoutTimestamp()
	}
	return ev.Key()
}

// Outcome describes what a single tick did
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeDisplayed
	OutcomeSuppressed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisplayed:
		return "displayed"
	case OutcomeSuppressed:
		return "suppressed"
	default:
		return "idle"
	}
}

// Queue is the source of pending call events
type Queue interface {
	DequeueOldest() (prtcall.CallEvent, bool)
}

// Indicator is the activity indicator driven by the reducer
type Indicator interface {
	Start() bool
	Stop() bool
	IsBlinking() bool
}

// History receives one row per displayed event
type History interface {
	Append(ev prtcall.CallEvent) prthistory.Row
}

// Display receives the visible call fields
type Display interface {
	SetCall(ev prtcall.CallEvent)
	IncSuppressed()
}

// Config wires a reducer to its collaborators
type Config struct {
	Queue     Queue
	Indicator Indicator
	History   History
	Display   Display
	Dedup     DedupMode
	// Publish, if set, receives pipeline events. It must not block.
	Publish func(events.Event)
}

// Reducer is the single writer of the last displayed call
type Reducer struct {
	queue     Queue
	indicator Indicator
	history   History
	display   Display
	dedup     DedupMode
	publish   func(events.Event)

	mu      sync.RWMutex
	last    prtcall.CallEvent
	hasLast bool
}

// New creates a reducer
func New(cfg Config) *Reducer {
	publish := cfg.Publish
	if publish == nil {
		publish = func(events.Event) {}
	}
	return &Reducer{
		queue:     cfg.Queue,
		indicator: cfg.Indicator,
		history:   cfg.History,
		display:   cfg.Display,
		dedup:     cfg.Dedup,
		publish:   publish,
	}
}

// Tick dequeues at most one event and applies it
func (r *Reducer) Tick() Outcome {
	ev, ok := r.queue.DequeueOldest()
	if !ok {
		return OutcomeIdle
	}

	outcome := OutcomeDisplayed

	r.mu.Lock()
	duplicate := r.hasLast && r.dedup.key(r.last) == r.dedup.key(ev)
	if !duplicate {
		r.last = ev
		r.hasLast = true
	}
	r.mu.Unlock()

	if duplicate {
		outcome = OutcomeSuppressed
		if r.display != nil {
			r.display.IncSuppressed()
		}
		log.Debugf("Suppressed duplicate %s %s", ev.Source, ev.Callsign)
		r.publish(events.NewCallEvent(events.CallSuppressed, ev))
	} else {
		if r.display != nil {
			r.display.SetCall(ev)
		}
		r.indicator.Start()

		var rowID int64
		if r.history != nil {
			rowID = r.history.Append(ev).ID
		}
		log.Debugf("%s %s via %s", ev.Timestamp.UTC().Format(prtcall.TimestampLayout), ev.Callsign, ev.Source)
		r.publish(events.NewDisplayedEvent(ev, rowID))
	}

	// The end marker stops the indicator even when its line was suppressed
	if ev.EndOfTransmission && r.indicator.IsBlinking() {
		r.indicator.Stop()
		log.Debugf("End of transmission from %s", ev.Callsign)
		r.publish(events.NewCallEvent(events.TransmissionEnded, ev))
	}

	return outcome
}

// Run calls Tick every interval until ctx is cancelled
func (r *Reducer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// LastDisplayed returns the most recently displayed event
func (r *Reducer) LastDisplayed() (prtcall.CallEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLast
}

// Dedup returns the configured dedup mode
func (r *Reducer) Dedup() DedupMode {
	return r.dedup
}
