package events

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
)

// EventType represents the type of monitor event
type EventType int

const (
	// Call pipeline events
	CallReceived EventType = iota
	CallDisplayed
	CallSuppressed
	TransmissionEnded

	// Visible state events
	IndicatorChanged
	RoomChanged
	HistoryCleared

	// Transport events
	StreamConnected
	StreamDisconnected
	StreamError

	// Log events
	LogMessage

	// Application lifecycle events
	ShutdownStarted
	ShutdownComplete
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case CallReceived:
		return "CallReceived"
	case CallDisplayed:
		return "CallDisplayed"
	case CallSuppressed:
		return "CallSuppressed"
	case TransmissionEnded:
		return "TransmissionEnded"
	case IndicatorChanged:
		return "IndicatorChanged"
	case RoomChanged:
		return "RoomChanged"
	case HistoryCleared:
		return "HistoryCleared"
	case StreamConnected:
		return "StreamConnected"
	case StreamDisconnected:
		return "StreamDisconnected"
	case StreamError:
		return "StreamError"
	case LogMessage:
		return "LogMessage"
	case ShutdownStarted:
		return "ShutdownStarted"
	case ShutdownComplete:
		return "ShutdownComplete"
	default:
		return "Unknown"
	}
}

// Event represents a monitor event with all relevant data
type Event struct {
	Type      EventType
	Timestamp time.Time

	// Call data
	Call      prtcall.CallEvent
	HistoryID int64

	// Indicator
	Blinking bool
	Glyph    string

	// Link state
	Room string

	// Transport
	Stream string
	Error  error

	// Log info
	LogLevel   logrus.Level
	LogMessage string
	LogFields  map[string]interface{}
}

// NewCallEvent creates a call pipeline event
func NewCallEvent(eventType EventType, call prtcall.CallEvent) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Call:      call,
	}
}

// NewDisplayedEvent creates a CallDisplayed event for a row appended to history
func NewDisplayedEvent(call prtcall.CallEvent, historyID int64) Event {
	return Event{
		Type:      CallDisplayed,
		Timestamp: time.Now(),
		Call:      call,
		HistoryID: historyID,
	}
}

// NewIndicatorEvent creates an indicator change event
func NewIndicatorEvent(blinking bool, glyph string) Event {
	return Event{
		Type:      IndicatorChanged,
		Timestamp: time.Now(),
		Blinking:  blinking,
		Glyph:     glyph,
	}
}

// NewRoomEvent creates a room change event. An empty room means unlinked.
func NewRoomEvent(room string) Event {
	return Event{
		Type:      RoomChanged,
		Timestamp: time.Now(),
		Room:      room,
	}
}

// NewStreamEvent creates a transport event for the named stream
func NewStreamEvent(eventType EventType, stream string, err error) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Stream:    stream,
		Error:     err,
	}
}

// NewLogEvent creates a new log message event
func NewLogEvent(level logrus.Level, message string, fields map[string]interface{}) Event {
	return Event{
		Type:       LogMessage,
		Timestamp:  time.Now(),
		LogLevel:   level,
		LogMessage: message,
		LogFields:  fields,
	}
}

// NewLifecycleEvent creates an event with only a type and timestamp
func NewLifecycleEvent(eventType EventType) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
	}
}
