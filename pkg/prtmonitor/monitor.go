// Package prtmonitor owns one call display session: classifier, queue,
// reducer, indicator, link tracker and history, plus the periodic tasks
// that drive them.
package prtmonitor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prtindicator"
	"github.com/txn2/parrot/pkg/prtlink"
	"github.com/txn2/parrot/pkg/prtqueue"
	"github.com/txn2/parrot/pkg/prtreducer"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/state"
)

// Config configures a Monitor
type Config struct {
	TickInterval  time.Duration
	BlinkInterval time.Duration
	Dedup         prtreducer.DedupMode
	HistoryLimit  int

	// Bus and Store may be shared with the TUI. When nil the monitor
	// creates and owns its own.
	Bus   *events.Bus
	Store *state.Store

	// Clock is the timestamp fallback for lines without one
	Clock func() time.Time
}

// Monitor is the context object for a session. All pipeline state lives here.
type Monitor struct {
	classifier *prtcall.Classifier
	queue      *prtqueue.Queue
	indicator  *prtindicator.Indicator
	history    *prthistory.Store
	tracker    *prtlink.Tracker
	reducer    *prtreducer.Reducer
	store      *state.Store
	bus        *events.Bus
	ownsBus    bool

	tickInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	stopped bool
}

// New creates a monitor. Nothing runs until Start.
func New(cfg Config) *Monitor {
	m := &Monitor{
		queue:        prtqueue.New(),
		history:      prthistory.NewStore(prthistory.Config{MaxRows: cfg.HistoryLimit}),
		store:        cfg.Store,
		bus:          cfg.Bus,
		tickInterval: cfg.TickInterval,
	}
	if m.tickInterval <= 0 {
		m.tickInterval = prtreducer.DefaultInterval
	}
	if m.store == nil {
		m.store = state.NewStore()
	}
	if m.bus == nil {
		m.bus = events.NewBus(1000)
		m.ownsBus = true
	}

	var opts []prtcall.Option
	if cfg.Clock != nil {
		opts = append(opts, prtcall.WithClock(cfg.Clock))
	}
	m.classifier = prtcall.NewClassifier(opts...)

	m.indicator = prtindicator.New(cfg.BlinkInterval, func(s prtindicator.State) {
		glyph := s.Phase.Glyph()
		m.store.SetIndicator(s.Blinking, glyph)
		m.bus.Publish(events.NewIndicatorEvent(s.Blinking, glyph))
	})

	m.tracker = prtlink.NewTracker(m.store, m.bus.Publish)

	m.reducer = prtreducer.New(prtreducer.Config{
		Queue:     m.queue,
		Indicator: m.indicator,
		History:   m.history,
		Display:   m.store,
		Dedup:     cfg.Dedup,
		Publish:   m.bus.Publish,
	})

	return m
}

// HandleLine classifies one line from a stream. Call events are queued for
// the reducer; link events are applied immediately.
func (m *Monitor) HandleLine(stream prtcall.Stream, line string) prtcall.Result {
	m.store.MarkLine(stream.String())

	res := m.classifier.Classify(stream, line)
	switch {
	case res.Call != nil:
		m.store.IncReceived()
		m.queue.Enqueue(*res.Call)
		m.bus.Publish(events.NewCallEvent(events.CallReceived, *res.Call))
	case res.Link != nil:
		m.tracker.Apply(*res.Link)
	default:
		log.Tracef("Ignored %s line: %s", stream, line)
	}
	return res
}

// Start launches the reducer ticker. The indicator goroutine is started on
// demand by the reducer. Start is a no-op if already running or stopped.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running || m.stopped {
		return
	}
	m.running = true

	if m.ownsBus {
		m.bus.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reducer.Run(runCtx, m.tickInterval)
	}()

	log.Debugf("Monitor started, tick %v, dedup %s", m.tickInterval, m.reducer.Dedup())
}

// Stop cancels both periodic tasks and waits for them to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	running := m.running
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.indicator.Close()

	if running && m.ownsBus {
		m.bus.Stop()
	}
	log.Debug("Monitor stopped")
}

// Tick runs one reducer step synchronously
func (m *Monitor) Tick() prtreducer.Outcome {
	return m.reducer.Tick()
}

// ClearHistory empties the history rows and returns how many were removed.
// It does not touch the display or queue.
func (m *Monitor) ClearHistory() int {
	n := m.history.Clear()
	m.bus.Publish(events.NewLifecycleEvent(events.HistoryCleared))
	log.Infof("History cleared (%d rows)", n)
	return n
}

// Display returns the visible display fields
func (m *Monitor) Display() state.DisplaySnapshot {
	return m.store.GetDisplay()
}

// Room returns the currently linked room
func (m *Monitor) Room() string {
	return m.tracker.Room()
}

// Summary returns pipeline statistics
func (m *Monitor) Summary() state.SummaryStats {
	s := m.store.GetSummary()
	s.Pending = m.queue.Len()
	s.HistoryRows = m.history.Len()
	s.DroppedEvents = m.bus.Dropped()
	return s
}

// IndicatorState returns the activity indicator state
func (m *Monitor) IndicatorState() prtindicator.State {
	return m.indicator.State()
}

// History returns the history store
func (m *Monitor) History() *prthistory.Store {
	return m.history
}

// Store returns the display state store
func (m *Monitor) Store() *state.Store {
	return m.store
}

// Bus returns the event bus
func (m *Monitor) Bus() *events.Bus {
	return m.bus
}

// Pending returns the number of queued call events
func (m *Monitor) Pending() int {
	return m.queue.Len()
}

// Streams returns the transport stream states
func (m *Monitor) Streams() []state.StreamSnapshot {
	return m.store.GetStreams()
}

// RecentHistory returns up to count history rows, newest first
func (m *Monitor) RecentHistory(count int) []prthistory.Row {
	return m.history.Recent(count)
}
