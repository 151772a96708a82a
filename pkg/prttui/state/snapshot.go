package state

import (
	"time"

	"github.com/txn2/parrot/pkg/prtcall"
)

// StreamStatus represents the connection state of a log stream
type StreamStatus int

const (
	StatusPending StreamStatus = iota
	StatusConnecting
	StatusConnected
	StatusError
	StatusStopped
)

// String returns a string representation of the status
func (s StreamStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	case StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// DisplaySnapshot is an immutable copy of the visible radio display
type DisplaySnapshot struct {
	// Current call, valid when HasCall is set
	HasCall bool
	Call    prtcall.CallEvent

	// Linked reflector, empty when unlinked
	Room string

	// Activity indicator
	Blinking bool
	Glyph    string

	UpdatedAt time.Time
}

// TimestampText returns the display form of the current call timestamp
func (d DisplaySnapshot) TimestampText() string {
	if !d.HasCall {
		return ""
	}
	return d.Call.Timestamp.UTC().Format(prtcall.TimestampLayout)
}

// SourceText returns the display form of the current call source
func (d DisplaySnapshot) SourceText() string {
	if !d.HasCall {
		return ""
	}
	return d.Call.Source.String()
}

// StreamSnapshot describes one transport stream
type StreamSnapshot struct {
	Name      string
	Target    string
	Status    StreamStatus
	Error     string
	Lines     uint64
	LastLine  time.Time
	UpdatedAt time.Time
}

// SummaryStats provides overall statistics for the status bar
type SummaryStats struct {
	Received      uint64
	Displayed     uint64
	Suppressed    uint64
	Pending       int
	HistoryRows   int
	Connected     int
	Streams       int
	DroppedEvents uint64 // bus events discarded under load
	LastUpdated   time.Time
}
