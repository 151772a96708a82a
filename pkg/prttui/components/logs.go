package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prttui/styles"
)

const maxLogLines = 500

// LogEntry is one line in the logs pane
type LogEntry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
}

// LogsModel displays parrot's own log output in a scrollable pane
type LogsModel struct {
	viewport viewport.Model
	entries  []LogEntry
	width    int
	height   int
	focused  bool
	ready    bool
}

// NewLogsModel creates a new logs model
func NewLogsModel() LogsModel {
	return LogsModel{
		entries: make([]LogEntry, 0, maxLogLines),
	}
}

// Update handles messages for the logs viewport
func (m LogsModel) Update(msg tea.Msg) (LogsModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.focused {
		switch key.String() {
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		case "pgdown":
			m.viewport.HalfViewDown()
		case "pgup":
			m.viewport.HalfViewUp()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// AppendLog adds an entry and scrolls to it
func (m *LogsModel) AppendLog(level logrus.Level, message string, t time.Time) {
	m.entries = append(m.entries, LogEntry{Time: t, Level: level, Message: message})
	if len(m.entries) > maxLogLines {
		m.entries = m.entries[len(m.entries)-maxLogLines:]
	}

	m.updateContent()
	if m.ready {
		m.viewport.GotoBottom()
	}
}

// Len returns the number of retained entries
func (m *LogsModel) Len() int {
	return len(m.entries)
}

func (m *LogsModel) updateContent() {
	if !m.ready {
		return
	}

	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, m.formatEntry(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *LogsModel) formatEntry(e LogEntry) string {
	timestamp := styles.LogTimestampStyle.Render(e.Time.Format("[15:04:05]"))
	label, style := levelLabel(e.Level)
	level := style.Render(fmt.Sprintf("[%s]", label))

	message := strings.TrimRight(e.Message, "\n\r")

	// [HH:MM:SS][LEVEL] plus a space
	const prefixWidth = 18
	avail := m.width - prefixWidth - 1
	if avail < 20 {
		avail = 20
	}
	if len(message) > avail {
		message = wrapText(message, avail, prefixWidth)
	}

	return fmt.Sprintf("%s%s %s", timestamp, level, message)
}

func levelLabel(level logrus.Level) (string, lipgloss.Style) {
	switch level {
	case logrus.PanicLevel:
		return "PANIC", styles.LogPanicStyle
	case logrus.FatalLevel:
		return "FATAL", styles.LogFatalStyle
	case logrus.ErrorLevel:
		return "ERROR", styles.LogErrorStyle
	case logrus.WarnLevel:
		return "WARN", styles.LogWarnStyle
	case logrus.DebugLevel:
		return "DEBUG", styles.LogDebugStyle
	case logrus.TraceLevel:
		return "TRACE", styles.LogTraceStyle
	default:
		return "INFO", styles.LogInfoStyle
	}
}

// wrapText wraps text at spaces where possible, indenting continuation lines
func wrapText(text string, width, indent int) string {
	if width <= 0 {
		return text
	}

	var out []string
	remaining := text
	for len(remaining) > width {
		cut := width
		for i := width; i > width/2; i-- {
			if remaining[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, remaining[:cut])
		remaining = strings.TrimLeft(remaining[cut:], " ")
	}
	if remaining != "" {
		out = append(out, remaining)
	}

	return strings.Join(out, "\n"+strings.Repeat(" ", indent))
}

// View renders the logs viewport
func (m LogsModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View()
}

// SetFocus sets the focus state
func (m *LogsModel) SetFocus(focused bool) {
	m.focused = focused
}

// SetSize updates the viewport dimensions
func (m *LogsModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.viewport.Style = lipgloss.NewStyle()
		m.viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}
	m.updateContent()
}
