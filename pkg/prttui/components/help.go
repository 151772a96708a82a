package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/txn2/parrot/pkg/prttui/styles"
)

// HelpModel displays keyboard shortcuts
type HelpModel struct {
	visible bool
	width   int
	height  int
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Update handles messages for the help modal
func (m *HelpModel) Update(msg tea.Msg) (HelpModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if m.visible {
			switch msg.String() {
			case "?", "q", "esc":
				m.visible = false
			}
		}
	}
	return *m, nil
}

// Toggle toggles the help visibility
func (m *HelpModel) Toggle() {
	m.visible = !m.visible
}

// IsVisible returns whether help is visible
func (m *HelpModel) IsVisible() bool {
	return m.visible
}

var helpItems = []struct {
	key  string
	desc string
}{
	{"History", ""},
	{"j / ↓", "Next call"},
	{"k / ↑", "Previous call"},
	{"g / Home", "Oldest call"},
	{"G / End", "Newest call, follow new calls"},
	{"PgDn / PgUp", "Page down/up"},
	{"Tab", "Switch focus (history/logs)"},
	{"", ""},
	{"Actions", ""},
	{"x", "Clear history"},
	{"c", "Toggle compact view"},
	{"?", "Toggle help"},
	{"q", "Quit"},
}

// View renders the help modal centered in the window
func (m *HelpModel) View() string {
	if !m.visible {
		return ""
	}

	var lines []string
	for _, item := range helpItems {
		switch {
		case item.key == "" && item.desc == "":
			lines = append(lines, "")
		case item.desc == "":
			lines = append(lines, styles.HelpTitleStyle.Render(item.key))
		default:
			lines = append(lines, styles.HelpKeyStyle.Render(item.key)+styles.HelpDescStyle.Render(item.desc))
		}
	}

	modal := styles.HelpModalStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
