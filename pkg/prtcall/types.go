package prtcall

import (
	"time"
)

// Source identifies how a transmission reached the repeater
type Source int

const (
	SourceUnknown Source = iota
	SourceRF
	SourceNetwork
)

// String returns the display form of the source
func (s Source) String() string {
	switch s {
	case SourceRF:
		return "RF"
	case SourceNetwork:
		return "Network"
	default:
		return "Unknown"
	}
}

// ParseSource is the inverse of Source.String. Unrecognized values map to SourceUnknown.
func ParseSource(s string) Source {
	switch s {
	case "RF":
		return SourceRF
	case "Network", "network":
		return SourceNetwork
	default:
		return SourceUnknown
	}
}

// MarshalText renders the source as its display name
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a display name back into a Source
func (s *Source) UnmarshalText(b []byte) error {
	*s = ParseSource(string(b))
	return nil
}

// Stream names the log a line was read from
type Stream int

const (
	// StreamPrimary is the call activity log (MMDVMHost)
	StreamPrimary Stream = iota
	// StreamSecondary is the linked reflector log (YSFGateway)
	StreamSecondary
)

func (s Stream) String() string {
	switch s {
	case StreamPrimary:
		return "primary"
	case StreamSecondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// CallEvent is one detected mention of a transmission.
// Values are immutable once returned by the classifier.
type CallEvent struct {
	Timestamp         time.Time `json:"timestamp"`
	Source            Source    `json:"source"`
	Callsign          string    `json:"callsign"`
	EndOfTransmission bool      `json:"end_of_transmission"`
}

// TimestampLayout is the layout of timestamps in repeater logs and in display fields
const TimestampLayout = "2006-01-02 15:04:05.000"

// Key returns the composite content of the event (timestamp, source, callsign).
// EndOfTransmission is not part of the key.
func (e CallEvent) Key() string {
	return e.Timestamp.UTC().Format(TimestampLayout) + "|" + e.Source.String() + "|" + e.Callsign
}

// KeyWithoutTimestamp returns the source and callsign part of the composite content
func (e CallEvent) KeyWithoutTimestamp() string {
	return e.Source.String() + "|" + e.Callsign
}

// LinkAction is the kind of reflector link change
type LinkAction int

const (
	LinkLinked LinkAction = iota
	LinkUnlinked
)

func (a LinkAction) String() string {
	switch a {
	case LinkLinked:
		return "Linked"
	case LinkUnlinked:
		return "Unlinked"
	default:
		return "Unknown"
	}
}

// LinkEvent is a reflector connect or disconnect. Room is empty for LinkUnlinked.
type LinkEvent struct {
	Action LinkAction `json:"action"`
	Room   string     `json:"room,omitempty"`
}

// Result holds at most one classified event. Both fields nil means the line
// was not recognized.
type Result struct {
	Call *CallEvent
	Link *LinkEvent
}

// Empty reports whether the line produced nothing
func (r Result) Empty() bool {
	return r.Call == nil && r.Link == nil
}
