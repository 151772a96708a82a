package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/txn2/parrot/pkg/prttui/state"
	"github.com/txn2/parrot/pkg/prttui/styles"
)

// StatusBarModel displays pipeline counters and stream health
type StatusBarModel struct {
	stats   state.SummaryStats
	streams []state.StreamSnapshot
	compact bool
	width   int
}

// NewStatusBarModel creates a new status bar model
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{compact: true}
}

// UpdateStats updates the displayed statistics
func (m *StatusBarModel) UpdateStats(stats state.SummaryStats, streams []state.StreamSnapshot) {
	m.stats = stats
	m.streams = streams
}

// SetCompact records the current history view mode
func (m *StatusBarModel) SetCompact(compact bool) {
	m.compact = compact
}

// View renders the status bar
func (m *StatusBarModel) View() string {
	s := m.stats

	calls := fmt.Sprintf("Calls: %d", s.Displayed)
	dupes := fmt.Sprintf("Dupes: %d", s.Suppressed)

	parts := []string{calls, dupes}
	if s.Pending > 0 {
		parts = append(parts, fmt.Sprintf("Queued: %d", s.Pending))
	}
	if s.DroppedEvents > 0 {
		parts = append(parts, fmt.Sprintf("Dropped: %d", s.DroppedEvents))
	}
	for _, st := range m.streams {
		parts = append(parts, streamStatusText(st))
	}

	mode := "expanded"
	if m.compact {
		mode = "compact"
	}
	parts = append(parts, mode)

	help := styles.StatusBarHelpStyle.Render("Press ? for help")
	left := " " + strings.Join(parts, " | ")

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(help) - 2
	if padding < 1 {
		padding = 1
	}

	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", padding) + help + " ")
}

func streamStatusText(st state.StreamSnapshot) string {
	text := st.Name + ": " + strings.ToLower(st.Status.String())
	return streamStatusStyle(st.Status).Render(text)
}

// streamStatusStyle returns the lipgloss style for a stream status
func streamStatusStyle(status state.StreamStatus) lipgloss.Style {
	switch status {
	case state.StatusConnected:
		return styles.StatusActiveStyle
	case state.StatusConnecting:
		return styles.StatusConnectingStyle
	case state.StatusError:
		return styles.StatusErrorStyle
	case state.StatusStopped:
		return styles.StatusStoppingStyle
	default:
		return styles.StatusPendingStyle
	}
}

// SetWidth updates the status bar width
func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}
