package prtapi

import (
	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/handlers"
	"github.com/txn2/parrot/pkg/prtapi/middleware"
	"github.com/txn2/parrot/pkg/prtapi/types"
)

// setupRouter creates and configures the Gin router with all routes
// URL structure:
//   - /read_log, /watch_log - raw repeater logs, for remote monitors
//   - /api/...               - REST API endpoints
func (m *Manager) setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(m.corsOrigins))
	r.Use(middleware.NoCache())
	r.Use(middleware.ErrorHandler())

	if m.logReader != nil {
		logFileHandler := handlers.NewLogFileHandler(m.logReader)
		r.GET("/read_log", logFileHandler.ReadLog)
		r.GET("/watch_log", logFileHandler.WatchLog)
	}

	api := r.Group("/api")
	{
		healthHandler := handlers.NewHealthHandler(m.version, m.startTime, func() types.ManagerInfo { return m })
		api.GET("/health", healthHandler.Health)
		api.GET("/info", healthHandler.Info)

		v1 := api.Group("/v1")
		{
			displayHandler := handlers.NewDisplayHandler(m.monitor)
			v1.GET("/display", displayHandler.Display)
			v1.GET("/status", displayHandler.Status)
			v1.GET("/streams", displayHandler.Streams)

			historyHandler := handlers.NewHistoryHandler(m.monitor, m.history)
			v1.GET("/history", historyHandler.List)
			v1.DELETE("/history", historyHandler.Clear)

			eventsHandler := handlers.NewEventsHandler(m.eventStreamer)
			v1.GET("/events", eventsHandler.Stream)

			logsHandler := handlers.NewLogsHandler(m.getLogBuffer)
			v1.GET("/logs", logsHandler.Recent)
			v1.DELETE("/logs", logsHandler.Clear)
		}
	}

	return r
}

func (m *Manager) getLogBuffer() types.LogBufferProvider {
	if m.logBuffer == nil {
		return nil
	}
	return m.logBuffer
}
