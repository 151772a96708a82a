package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

// HistoryHandler handles the displayed call history
type HistoryHandler struct {
	monitor    types.MonitorReader
	controller types.HistoryController
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(monitor types.MonitorReader, controller types.HistoryController) *HistoryHandler {
	return &HistoryHandler{
		monitor:    monitor,
		controller: controller,
	}
}

// List returns history rows, newest first
// GET /api/v1/history?count=100
func (h *HistoryHandler) List(c *gin.Context) {
	if h.monitor == nil {
		notReady(c, "Monitor")
		return
	}

	count := queryCount(c, "count", 100, 1000)
	rows := h.monitor.RecentHistory(count)

	result := make([]types.HistoryRowResponse, len(rows))
	for i, r := range rows {
		result[i] = types.NewHistoryRowResponse(r)
	}

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    result,
		Meta: &types.MetaInfo{
			Count:     len(result),
			Timestamp: time.Now(),
		},
	})
}

// Clear removes every history row. The current display is unchanged.
// DELETE /api/v1/history
func (h *HistoryHandler) Clear(c *gin.Context) {
	if h.controller == nil {
		notReady(c, "History controller")
		return
	}

	n := h.controller.ClearHistory()

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    types.ClearHistoryResponse{Cleared: n},
		Meta: &types.MetaInfo{
			Timestamp: time.Now(),
		},
	})
}
