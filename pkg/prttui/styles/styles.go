package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// color returns a lipgloss.Color, choosing light or dark variant based on the
// current theme set by SetDarkTheme.
func color(light, dark string) lipgloss.Color {
	if isDark {
		return lipgloss.Color(dark)
	}
	return lipgloss.Color(light)
}

// isDark tracks the current theme. Default is dark.
var isDark = true

// SetDarkTheme switches the color palette. Call this before the TUI starts.
func SetDarkTheme(dark bool) {
	isDark = dark
	applyTheme()
}

// IsDarkTheme returns the current theme setting.
func IsDarkTheme() bool {
	return isDark
}

// ResolveTheme maps a configured theme name to a palette choice.
// "dark" and "light" are explicit; anything else asks the terminal.
func ResolveTheme(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return true
	case "light":
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

func applyTheme() {
	// --- palette ---
	colorYellow := color("136", "226")
	colorBlue := color("27", "39")
	colorGreen := color("28", "42")
	colorRed := color("160", "196")
	colorOrange := color("166", "208")
	colorGray := color("243", "240")
	colorWhite := color("16", "255")
	colorFocused := color("62", "62")
	colorCyan := color("30", "51")
	colorSelectedBg := color("254", "237")

	// --- header ---
	HeaderTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	HeaderVersionStyle = lipgloss.NewStyle().Foreground(colorWhite)
	HeaderCallsignStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	HeaderHintStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- radio display ---
	DisplayBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocused).Padding(0, 2)
	DisplayCallsignStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	DisplayLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	DisplayValueStyle = lipgloss.NewStyle().Foreground(colorWhite)
	DisplayIdleStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	DisplayRoomStyle = lipgloss.NewStyle().Foreground(colorCyan)

	// --- indicator ---
	IndicatorActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	IndicatorIdleStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- call source ---
	SourceRFStyle = lipgloss.NewStyle().Foreground(colorGreen)
	SourceNetworkStyle = lipgloss.NewStyle().Foreground(colorBlue)
	SourceUnknownStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- stream status ---
	StatusActiveStyle = lipgloss.NewStyle().Foreground(colorGreen)
	StatusConnectingStyle = lipgloss.NewStyle().Foreground(colorYellow)
	StatusErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	StatusStoppingStyle = lipgloss.NewStyle().Foreground(colorOrange)
	StatusPendingStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- log levels ---
	LogPanicStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	LogFatalStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	LogErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	LogWarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	LogInfoStyle = lipgloss.NewStyle().Foreground(colorGreen)
	LogDebugStyle = lipgloss.NewStyle().Foreground(colorBlue)
	LogTraceStyle = lipgloss.NewStyle().Foreground(colorGray)
	LogTimestampStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- table ---
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	TableSelectedStyle = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorWhite)

	// --- status bar ---
	StatusBarStyle = lipgloss.NewStyle().Foreground(colorWhite)
	StatusBarErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	StatusBarHelpStyle = lipgloss.NewStyle().Foreground(colorGray)

	// --- help modal ---
	HelpModalStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocused).Padding(1, 2)
	HelpTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow).MarginBottom(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(colorBlue).Width(12)
	HelpDescStyle = lipgloss.NewStyle().Foreground(colorWhite)

	// --- section ---
	SectionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	FocusAccentStyle = lipgloss.NewStyle().Foreground(colorCyan)
}

// All style variables, initialized with the dark theme.
var (
	// Header styles
	HeaderTitleStyle    lipgloss.Style
	HeaderVersionStyle  lipgloss.Style
	HeaderCallsignStyle lipgloss.Style
	HeaderHintStyle     lipgloss.Style

	// Radio display styles
	DisplayBorderStyle   lipgloss.Style
	DisplayCallsignStyle lipgloss.Style
	DisplayLabelStyle    lipgloss.Style
	DisplayValueStyle    lipgloss.Style
	DisplayIdleStyle     lipgloss.Style
	DisplayRoomStyle     lipgloss.Style

	// Activity indicator styles
	IndicatorActiveStyle lipgloss.Style
	IndicatorIdleStyle   lipgloss.Style

	// Call source styles
	SourceRFStyle      lipgloss.Style
	SourceNetworkStyle lipgloss.Style
	SourceUnknownStyle lipgloss.Style

	// Status styles for log streams
	StatusActiveStyle     lipgloss.Style
	StatusConnectingStyle lipgloss.Style
	StatusErrorStyle      lipgloss.Style
	StatusStoppingStyle   lipgloss.Style
	StatusPendingStyle    lipgloss.Style

	// Log level styles
	LogPanicStyle     lipgloss.Style
	LogFatalStyle     lipgloss.Style
	LogErrorStyle     lipgloss.Style
	LogWarnStyle      lipgloss.Style
	LogInfoStyle      lipgloss.Style
	LogDebugStyle     lipgloss.Style
	LogTraceStyle     lipgloss.Style
	LogTimestampStyle lipgloss.Style

	// Table styles
	TableHeaderStyle   lipgloss.Style
	TableSelectedStyle lipgloss.Style

	// Status bar styles
	StatusBarStyle      lipgloss.Style
	StatusBarErrorStyle lipgloss.Style
	StatusBarHelpStyle  lipgloss.Style

	// Help modal styles
	HelpModalStyle lipgloss.Style
	HelpTitleStyle lipgloss.Style
	HelpKeyStyle   lipgloss.Style
	HelpDescStyle  lipgloss.Style

	// Section styles
	SectionTitleStyle lipgloss.Style
	FocusAccentStyle  lipgloss.Style
)

func init() {
	applyTheme()
}
