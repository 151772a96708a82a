// Package prtapi serves the parrot REST API: raw log access for remote
// monitors and, when a monitor is attached, its display, history and events.
package prtapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

// Type aliases for convenience
type (
	MonitorReader     = types.MonitorReader
	HistoryController = types.HistoryController
	EventStreamer     = types.EventStreamer
	LogReader         = types.LogReader
)

// Manager manages the API server lifecycle
type Manager struct {
	server    *http.Server
	router    *gin.Engine
	listener  net.Listener
	stopChan  chan struct{}
	doneChan  chan struct{}
	stopOnce  sync.Once
	startTime time.Time
	addr      string

	monitor       MonitorReader
	history       HistoryController
	eventStreamer EventStreamer
	logReader     LogReader
	logBuffer     *LogBuffer
	corsOrigins   []string

	version    string
	callsign   string
	tuiEnabled bool

	mu sync.RWMutex
}

// NewManager creates a manager that will listen on addr (host:port)
func NewManager(addr, version string) *Manager {
	return &Manager{
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		startTime: time.Now(),
		addr:      addr,
		version:   version,
	}
}

// SetMonitor attaches a running monitor for the display and history endpoints
func (m *Manager) SetMonitor(monitor MonitorReader, history HistoryController) {
	m.monitor = monitor
	m.history = history
}

// SetEventStreamer sets the event streamer for SSE
func (m *Manager) SetEventStreamer(streamer EventStreamer) {
	m.eventStreamer = streamer
}

// SetLogReader enables /read_log and /watch_log
func (m *Manager) SetLogReader(reader LogReader) {
	m.logReader = reader
}

// SetLogBuffer sets the buffer served by /api/v1/logs
func (m *Manager) SetLogBuffer(buffer *LogBuffer) {
	m.logBuffer = buffer
}

// SetCORSOrigins restricts cross-origin access to origins. Empty allows any origin.
func (m *Manager) SetCORSOrigins(origins []string) {
	m.corsOrigins = origins
}

// SetCallsign sets the station callsign reported by /api/info
func (m *Manager) SetCallsign(callsign string) {
	m.callsign = callsign
}

// SetTUIEnabled sets whether TUI mode is also active
func (m *Manager) SetTUIEnabled(enabled bool) {
	m.tuiEnabled = enabled
}

// Handler builds the router without starting a server
func (m *Manager) Handler() http.Handler {
	return m.setupRouter()
}

// Run starts the API server and blocks until Stop is called or the server fails
func (m *Manager) Run() error {
	defer close(m.doneChan)

	if m.monitor == nil && m.logReader == nil {
		return errors.New("nothing to serve: neither monitor nor log reader configured")
	}

	if m.logBuffer == nil {
		m.logBuffer = NewLogBuffer(DefaultLogBufferSize)
		log.AddHook(NewLogBufferHook(m.logBuffer, nil))
	}

	gin.SetMode(gin.ReleaseMode)
	m.router = m.setupRouter()

	listener, err := net.Listen("tcp", m.addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", m.addr)
	}

	m.mu.Lock()
	m.listener = listener
	m.server = &http.Server{
		Handler:      m.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams are long lived
		IdleTimeout:  120 * time.Second,
	}
	server := m.server
	m.mu.Unlock()

	log.Infof("API listening on http://%s", listener.Addr())

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-m.stopChan:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("API server shutdown error: %v", err)
		}
	case err := <-errCh:
		return errors.Wrap(err, "api server")
	}

	return nil
}

// Stop stops the API server. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// Done returns a channel that closes when Run returns
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// Addr returns the bound address once the server is listening, or the
// configured address before that
func (m *Manager) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return m.addr
}

// Uptime returns the server uptime
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// StartTime returns when the manager was created
func (m *Manager) StartTime() time.Time {
	return m.startTime
}

// Version returns the configured version
func (m *Manager) Version() string {
	return m.version
}

// Callsign returns the station callsign
func (m *Manager) Callsign() string {
	return m.callsign
}

// MonitorEnabled reports whether display and history endpoints are served
func (m *Manager) MonitorEnabled() bool {
	return m.monitor != nil
}

// LogsEnabled reports whether the raw log endpoints are served
func (m *Manager) LogsEnabled() bool {
	return m.logReader != nil
}

// TUIEnabled returns whether TUI is also enabled
func (m *Manager) TUIEnabled() bool {
	return m.tuiEnabled
}

var _ types.ManagerInfo = (*Manager)(nil)
