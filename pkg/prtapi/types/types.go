package types

import (
	"time"

	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prttui/state"
)

// Response is the standard API response wrapper
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo provides error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo provides response metadata
type MetaInfo struct {
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// === Display ===

// DisplayResponse is the radio display as shown to the operator.
// Timestamp and source are display strings, empty before the first call.
type DisplayResponse struct {
	Callsign  string    `json:"callsign"`
	Timestamp string    `json:"timestamp"`
	Source    string    `json:"source"`
	Room      string    `json:"room"`
	Linked    bool      `json:"linked"`
	Blinking  bool      `json:"blinking"`
	Indicator string    `json:"indicator"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDisplayResponse maps a display snapshot to its API form
func NewDisplayResponse(d state.DisplaySnapshot) DisplayResponse {
	resp := DisplayResponse{
		Timestamp: d.TimestampText(),
		Source:    d.SourceText(),
		Room:      d.Room,
		Linked:    d.Room != "",
		Blinking:  d.Blinking,
		Indicator: d.Glyph,
		UpdatedAt: d.UpdatedAt,
	}
	if d.HasCall {
		resp.Callsign = d.Call.Callsign
	}
	return resp
}

// StreamResponse describes one log stream
type StreamResponse struct {
	Name     string    `json:"name"`
	Target   string    `json:"target"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
	Lines    uint64    `json:"lines"`
	LastLine time.Time `json:"lastLine,omitempty"`
}

// SummaryResponse provides pipeline counters
type SummaryResponse struct {
	Received      uint64 `json:"received"`
	Displayed     uint64 `json:"displayed"`
	Suppressed    uint64 `json:"suppressed"`
	Pending       int    `json:"pending"`
	HistoryRows   int    `json:"historyRows"`
	Streams       int    `json:"streams"`
	Connected     int    `json:"connected"`
	DroppedEvents uint64 `json:"droppedEvents"`
}

// StatusResponse combines the display with stream and counter state
type StatusResponse struct {
	Display DisplayResponse  `json:"display"`
	Summary SummaryResponse  `json:"summary"`
	Streams []StreamResponse `json:"streams"`
}

// === History ===

// HistoryRowResponse is one history table row
type HistoryRowResponse struct {
	ID          int64     `json:"id"`
	Timestamp   string    `json:"timestamp"`
	Source      string    `json:"source"`
	Callsign    string    `json:"callsign"`
	DisplayedAt time.Time `json:"displayedAt"`
}

// NewHistoryRowResponse maps a history row to its API form
func NewHistoryRowResponse(r prthistory.Row) HistoryRowResponse {
	return HistoryRowResponse{
		ID:          r.ID,
		Timestamp:   r.TimestampText(),
		Source:      r.Source.String(),
		Callsign:    r.Callsign,
		DisplayedAt: r.DisplayedAt,
	}
}

// ClearHistoryResponse reports how many rows were removed
type ClearHistoryResponse struct {
	Cleared int `json:"cleared"`
}

// === Health ===

// HealthResponse provides health status
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy", "degraded"
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// InfoResponse provides detailed runtime information
type InfoResponse struct {
	Version        string    `json:"version"`
	GoVersion      string    `json:"goVersion"`
	Platform       string    `json:"platform"`
	StartTime      time.Time `json:"startTime"`
	Uptime         string    `json:"uptime"`
	Callsign       string    `json:"callsign,omitempty"`
	MonitorEnabled bool      `json:"monitorEnabled"`
	LogsEnabled    bool      `json:"logsEnabled"`
	TUIEnabled     bool      `json:"tuiEnabled"`
}

// === Events (SSE) ===

// EventResponse represents an event for SSE streaming
type EventResponse struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// === Logs ===

// LogBufferEntry represents a single entry in the system log buffer
type LogBufferEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}
