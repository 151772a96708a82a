package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prttui/state"
	"github.com/txn2/parrot/pkg/prttui/styles"
)

// DisplayModel renders the radio display panel: last callsign, when and
// how it was heard, the linked room and the activity indicator.
type DisplayModel struct {
	snapshot state.DisplaySnapshot
	width    int
}

// NewDisplayModel creates a new display model
func NewDisplayModel() DisplayModel {
	return DisplayModel{}
}

// SetSnapshot replaces the rendered display state
func (m *DisplayModel) SetSnapshot(s state.DisplaySnapshot) {
	m.snapshot = s
}

// Snapshot returns the rendered display state
func (m *DisplayModel) Snapshot() state.DisplaySnapshot {
	return m.snapshot
}

// SetWidth updates the panel width
func (m *DisplayModel) SetWidth(width int) {
	m.width = width
}

// View renders the display panel
func (m *DisplayModel) View() string {
	s := m.snapshot

	glyph := s.Glyph
	if glyph == "" {
		glyph = "○"
	}
	indicator := styles.IndicatorIdleStyle.Render(glyph)
	if s.Blinking {
		indicator = styles.IndicatorActiveStyle.Render(glyph)
	}

	var callLine string
	if s.HasCall {
		callLine = indicator + "  " + styles.DisplayCallsignStyle.Render(s.Call.Callsign)
	} else {
		callLine = indicator + "  " + styles.DisplayIdleStyle.Render("Waiting for calls...")
	}

	when := styles.DisplayLabelStyle.Render("Time   ") + styles.DisplayValueStyle.Render(orDash(s.TimestampText()))
	source := styles.DisplayLabelStyle.Render("Source ") + renderSource(s)
	room := styles.DisplayLabelStyle.Render("Room   ") + renderRoom(s.Room)

	content := lipgloss.JoinVertical(lipgloss.Left, callLine, "", when, source, room)

	style := styles.DisplayBorderStyle
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(content)
}

func renderSource(s state.DisplaySnapshot) string {
	if !s.HasCall {
		return styles.DisplayValueStyle.Render("-")
	}
	return sourceStyle(s.Call.Source).Render(s.SourceText())
}

func renderRoom(room string) string {
	if room == "" {
		return styles.DisplayIdleStyle.Render("not linked")
	}
	return styles.DisplayRoomStyle.Render(room)
}

// sourceStyle returns the lipgloss style for a call source
func sourceStyle(src prtcall.Source) lipgloss.Style {
	switch src {
	case prtcall.SourceRF:
		return styles.SourceRFStyle
	case prtcall.SourceNetwork:
		return styles.SourceNetworkStyle
	default:
		return styles.SourceUnknownStyle
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
