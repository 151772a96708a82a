package types

import (
	"time"

	"github.com/pkg/errors"

	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prtstream"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/state"
)

// MonitorReader provides read access to a running monitor
type MonitorReader interface {
	Display() state.DisplaySnapshot
	Summary() state.SummaryStats
	Streams() []state.StreamSnapshot
	RecentHistory(count int) []prthistory.Row
}

// HistoryController provides history mutations
type HistoryController interface {
	// ClearHistory removes every row and returns the number removed
	ClearHistory() int
}

// EventStreamer provides event subscription for SSE
type EventStreamer interface {
	// Subscribe returns a channel for all events and a cancel function
	Subscribe() (<-chan events.Event, func())

	// SubscribeType returns a channel for specific event types
	SubscribeType(eventType events.EventType) (<-chan events.Event, func())
}

// LogBufferProvider provides access to the system log buffer
type LogBufferProvider interface {
	// GetLast returns the last n entries (most recent first)
	GetLast(n int) []LogBufferEntry
	// Count returns the total number of entries in the buffer
	Count() int
	// Clear removes all entries from the buffer
	Clear()
}

// ErrInvalidOverride is returned for a log override that is not a plain file prefix
var ErrInvalidOverride = errors.New("invalid log override")

// LogReader serves raw repeater log files. An empty override selects the
// configured log; otherwise override is a file prefix whose newest file in
// the log directory is used.
type LogReader interface {
	Tail(lines int, filter, override string) ([]string, error)
	Follow(override string) (prtstream.Source, error)
}

// ManagerInfo provides server runtime information
type ManagerInfo interface {
	Version() string
	Uptime() time.Duration
	StartTime() time.Time
	Callsign() string
	MonitorEnabled() bool
	LogsEnabled() bool
	TUIEnabled() bool
}
