package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/types"
	"github.com/txn2/parrot/pkg/prttui/state"
)

// DisplayHandler serves the radio display and pipeline status
type DisplayHandler struct {
	monitor types.MonitorReader
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(monitor types.MonitorReader) *DisplayHandler {
	return &DisplayHandler{monitor: monitor}
}

// Display returns the current call, linked room and indicator
// GET /api/v1/display
func (h *DisplayHandler) Display(c *gin.Context) {
	if h.monitor == nil {
		notReady(c, "Monitor")
		return
	}

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    types.NewDisplayResponse(h.monitor.Display()),
		Meta: &types.MetaInfo{
			Timestamp: time.Now(),
		},
	})
}

// Status returns the display together with stream state and counters
// GET /api/v1/status
func (h *DisplayHandler) Status(c *gin.Context) {
	if h.monitor == nil {
		notReady(c, "Monitor")
		return
	}

	streams := mapStreams(h.monitor.Streams())
	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data: types.StatusResponse{
			Display: types.NewDisplayResponse(h.monitor.Display()),
			Summary: mapSummary(h.monitor.Summary()),
			Streams: streams,
		},
		Meta: &types.MetaInfo{
			Count:     len(streams),
			Timestamp: time.Now(),
		},
	})
}

// Streams returns the log stream connection states
// GET /api/v1/streams
func (h *DisplayHandler) Streams(c *gin.Context) {
	if h.monitor == nil {
		notReady(c, "Monitor")
		return
	}

	streams := mapStreams(h.monitor.Streams())
	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    streams,
		Meta: &types.MetaInfo{
			Count:     len(streams),
			Timestamp: time.Now(),
		},
	})
}

func mapStreams(in []state.StreamSnapshot) []types.StreamResponse {
	out := make([]types.StreamResponse, len(in))
	for i, s := range in {
		out[i] = types.StreamResponse{
			Name:     s.Name,
			Target:   s.Target,
			Status:   s.Status.String(),
			Error:    s.Error,
			Lines:    s.Lines,
			LastLine: s.LastLine,
		}
	}
	return out
}

func mapSummary(s state.SummaryStats) types.SummaryResponse {
	return types.SummaryResponse{
		Received:      s.Received,
		Displayed:     s.Displayed,
		Suppressed:    s.Suppressed,
		Pending:       s.Pending,
		HistoryRows:   s.HistoryRows,
		Streams:       s.Streams,
		Connected:     s.Connected,
		DroppedEvents: s.DroppedEvents,
	}
}
