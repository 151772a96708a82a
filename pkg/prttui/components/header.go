package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/txn2/parrot/pkg/prttui/styles"
)

// HeaderModel displays the application title, version and the station callsign
type HeaderModel struct {
	version  string
	callsign string
	width    int
}

// NewHeaderModel creates a new header model
func NewHeaderModel(version, callsign string) HeaderModel {
	return HeaderModel{
		version:  version,
		callsign: callsign,
	}
}

// Update handles messages for the header
func (m *HeaderModel) Update(msg tea.Msg) (HeaderModel, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
	}
	return *m, nil
}

// View renders the header
func (m *HeaderModel) View() string {
	title := styles.HeaderTitleStyle.Render("parrot")
	version := styles.HeaderVersionStyle.Render(" v" + m.version)

	leftPart := fmt.Sprintf(" %s%s", title, version)
	if m.callsign != "" {
		leftPart += " | " + styles.HeaderCallsignStyle.Render(m.callsign)
	}

	rightPart := styles.HeaderHintStyle.Render("[x: clear] [c: compact]")

	leftWidth := lipgloss.Width(leftPart)
	rightWidth := lipgloss.Width(rightPart)
	spacing := m.width - leftWidth - rightWidth - 1
	if spacing < 1 {
		spacing = 1
	}

	return leftPart + strings.Repeat(" ", spacing) + rightPart
}

// SetWidth updates the header width
func (m *HeaderModel) SetWidth(width int) {
	m.width = width
}

// Callsign returns the station callsign shown in the header
func (m *HeaderModel) Callsign() string {
	return m.callsign
}
