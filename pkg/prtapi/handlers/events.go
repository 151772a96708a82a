package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/types"
	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prttui/events"
)

// keepaliveInterval is how often an idle SSE stream sends a comment
var keepaliveInterval = 30 * time.Second

// EventsHandler handles event streaming endpoints
type EventsHandler struct {
	streamer types.EventStreamer
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(streamer types.EventStreamer) *EventsHandler {
	return &EventsHandler{
		streamer: streamer,
	}
}

// Stream provides Server-Sent Events for real-time monitor updates
// GET /api/v1/events?type=CallDisplayed
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.streamer == nil {
		notReady(c, "Event streamer")
		return
	}

	var eventCh <-chan events.Event
	var cancel func()

	if filter := c.Query("type"); filter != "" {
		eventType, ok := parseEventType(filter)
		if !ok {
			errorResponse(c, http.StatusBadRequest, "INVALID_TYPE", "unknown event type "+filter)
			return
		}
		eventCh, cancel = h.streamer.SubscribeType(eventType)
	} else {
		eventCh, cancel = h.streamer.Subscribe()
	}
	defer cancel()

	// A closed channel means there is no event bus behind the streamer
	select {
	case _, ok := <-eventCh:
		if !ok {
			errorResponse(c, http.StatusServiceUnavailable, "EVENT_BUS_UNAVAILABLE", "Event bus not initialized")
			return
		}
	default:
	}

	writeSSEHeaders(c)

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return false
			}
			jsonData, err := json.Marshal(mapEventToResponse(event))
			if err != nil {
				return true
			}
			_, _ = fmt.Fprintf(w, "event: %s\n", event.Type.String())
			_, _ = fmt.Fprintf(w, "data: %s\n\n", jsonData)
			return true

		case <-keepalive.C:
			_, _ = fmt.Fprintf(w, ": keepalive\n\n")
			return true

		case <-c.Request.Context().Done():
			return false
		}
	})
}

// writeSSEHeaders sets event stream headers and flushes an initial comment
func writeSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	_, _ = c.Writer.WriteString(": connected\n\n")
	c.Writer.Flush()
}

func mapEventToResponse(e events.Event) types.EventResponse {
	data := map[string]interface{}{}

	switch e.Type {
	case events.CallReceived, events.CallDisplayed, events.CallSuppressed, events.TransmissionEnded:
		data["callsign"] = e.Call.Callsign
		data["source"] = e.Call.Source.String()
		data["timestamp"] = e.Call.Timestamp.UTC().Format(prtcall.TimestampLayout)
		data["endOfTransmission"] = e.Call.EndOfTransmission
		if e.HistoryID > 0 {
			data["historyId"] = e.HistoryID
		}
	case events.IndicatorChanged:
		data["blinking"] = e.Blinking
		data["indicator"] = e.Glyph
	case events.RoomChanged:
		data["room"] = e.Room
		data["linked"] = e.Room != ""
	case events.StreamConnected, events.StreamDisconnected, events.StreamError:
		data["stream"] = e.Stream
	case events.LogMessage:
		data["level"] = e.LogLevel.String()
		data["message"] = e.LogMessage
	}

	if e.Error != nil {
		data["error"] = e.Error.Error()
	}

	return types.EventResponse{
		Type:      e.Type.String(),
		Timestamp: e.Timestamp,
		Data:      data,
	}
}

var eventTypes = []events.EventType{
	events.CallReceived,
	events.CallDisplayed,
	events.CallSuppressed,
	events.TransmissionEnded,
	events.IndicatorChanged,
	events.RoomChanged,
	events.HistoryCleared,
	events.StreamConnected,
	events.StreamDisconnected,
	events.StreamError,
	events.LogMessage,
	events.ShutdownStarted,
	events.ShutdownComplete,
}

// parseEventType converts a string to an EventType
func parseEventType(s string) (events.EventType, bool) {
	for _, t := range eventTypes {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}
