package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

// LogsHandler serves parrot's own log messages from the log buffer
type LogsHandler struct {
	getBuffer func() types.LogBufferProvider
}

// NewLogsHandler creates a new logs handler
func NewLogsHandler(getBuffer func() types.LogBufferProvider) *LogsHandler {
	return &LogsHandler{getBuffer: getBuffer}
}

func (h *LogsHandler) buffer() types.LogBufferProvider {
	if h.getBuffer == nil {
		return nil
	}
	return h.getBuffer()
}

// Recent returns recent log entries, most recent first
// GET /api/v1/logs?count=100&level=error
func (h *LogsHandler) Recent(c *gin.Context) {
	buf := h.buffer()
	if buf == nil {
		notReady(c, "Log buffer")
		return
	}

	count := queryCount(c, "count", 100, 1000)
	entries := buf.GetLast(count)

	if level := c.Query("level"); level != "" {
		filtered := make([]types.LogBufferEntry, 0, len(entries))
		for _, e := range entries {
			if e.Level == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []types.LogBufferEntry{}
	}

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    entries,
		Meta: &types.MetaInfo{
			Count:     len(entries),
			Timestamp: time.Now(),
		},
	})
}

// Clear empties the log buffer
// DELETE /api/v1/logs
func (h *LogsHandler) Clear(c *gin.Context) {
	buf := h.buffer()
	if buf == nil {
		notReady(c, "Log buffer")
		return
	}

	buf.Clear()

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Meta: &types.MetaInfo{
			Timestamp: time.Now(),
		},
	})
}
