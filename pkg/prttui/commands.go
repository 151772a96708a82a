package prttui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prttui/events"
)

// ListenEvents creates a command that listens for monitor events
func ListenEvents(eventCh <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return MonitorEventMsg{Event: event}
	}
}

// ListenHistory creates a command that waits for a debounced history refresh
func ListenHistory(refreshCh <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-refreshCh; !ok {
			return nil
		}
		return HistoryRefreshMsg{}
	}
}

// ListenLogs creates a command that listens for log entries
func ListenLogs(logCh <-chan LogEntryMsg) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-logCh
		if !ok {
			return nil
		}
		return entry
	}
}

// ListenShutdown creates a command that listens for shutdown signal
func ListenShutdown(stopCh <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-stopCh
		return ShutdownMsg{}
	}
}

// SendLog creates a log entry message
func SendLog(level logrus.Level, message string) tea.Cmd {
	return func() tea.Msg {
		return LogEntryMsg{
			Level:   level,
			Message: message,
			Time:    time.Now(),
		}
	}
}
