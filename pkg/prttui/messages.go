package prttui

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prttui/events"
)

// MonitorEventMsg wraps monitor events for the TUI
type MonitorEventMsg struct {
	Event events.Event
}

// HistoryRefreshMsg asks the model to reload the history table
type HistoryRefreshMsg struct{}

// LogEntryMsg represents a log message to display
type LogEntryMsg struct {
	Level   logrus.Level
	Message string
	Time    time.Time
}

// ShutdownMsg signals the TUI to shut down
type ShutdownMsg struct{}

// RefreshMsg triggers a full UI refresh
type RefreshMsg struct{}
