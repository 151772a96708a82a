// Package prttui is the terminal front end for a running monitor: the radio
// display panel, the call history table and parrot's own logs.
package prttui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bep/debounce"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prttui/components"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/state"
	"github.com/txn2/parrot/pkg/prttui/styles"
)

// HistoryDebounce coalesces bursts of history changes into one table rebuild
const HistoryDebounce = 100 * time.Millisecond

// Monitor is the part of a monitor session the TUI reads and controls
type Monitor interface {
	Display() state.DisplaySnapshot
	Summary() state.SummaryStats
	Streams() []state.StreamSnapshot
	History() *prthistory.Store
	ClearHistory() int
	Bus() *events.Bus
}

// Config configures the TUI
type Config struct {
	Version  string
	Callsign string

	// Compact starts the history table condensed, with the logs pane visible
	Compact bool
}

// Focus tracks which component has focus
type Focus int

const (
	FocusHistory Focus = iota
	FocusLogs
)

// Manager manages the TUI lifecycle
type Manager struct {
	program         *tea.Program
	model           *RootModel
	unsubscribe     events.UnsubscribeFunc
	stopChan        chan struct{}
	doneChan        chan struct{}
	originalOut     io.Writer
	triggerShutdown func()
}

// RootModel is the main bubbletea model
type RootModel struct {
	// Components
	header    components.HeaderModel
	display   components.DisplayModel
	history   components.HistoryModel
	logs      components.LogsModel
	statusBar components.StatusBarModel
	help      components.HelpModel

	monitor  Monitor
	focus    Focus
	compact  bool
	quitting bool

	// Dimensions
	width         int
	height        int
	historyHeight int
	logsHeight    int

	// Channels for async updates
	eventCh   <-chan events.Event
	refreshCh <-chan struct{}
	logCh     <-chan LogEntryMsg
	stopCh    <-chan struct{}
}

// New creates the TUI for mon. shutdownChan stops the TUI from outside;
// triggerShutdown is called when the user quits.
func New(mon Monitor, cfg Config, shutdownChan <-chan struct{}, triggerShutdown func()) *Manager {
	eventCh := make(chan events.Event, 100)
	refreshCh := make(chan struct{}, 1)
	logCh := make(chan LogEntryMsg, 100)

	m := &Manager{
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
		triggerShutdown: triggerShutdown,
	}

	requestRefresh := func() {
		select {
		case refreshCh <- struct{}{}:
		default:
			// a refresh is already pending
		}
	}
	debounced := debounce.New(HistoryDebounce)

	m.unsubscribe = mon.Bus().SubscribeAll(func(e events.Event) {
		switch e.Type {
		case events.CallDisplayed, events.HistoryCleared:
			debounced(requestRefresh)
			return
		case events.CallReceived, events.LogMessage:
			return
		default:
		}
		select {
		case eventCh <- e:
		default:
			// Buffer full, the next event redraws from current state
		}
	})

	m.model = newRootModel(mon, cfg)
	m.model.eventCh = eventCh
	m.model.refreshCh = refreshCh
	m.model.logCh = logCh
	m.model.stopCh = shutdownChan

	// Suppress terminal output and capture logs
	m.originalOut = log.StandardLogger().Out
	log.SetOutput(io.Discard)
	log.AddHook(&tuiLogHook{logCh: logCh})

	go func() {
		if shutdownChan == nil {
			return
		}
		select {
		case <-shutdownChan:
			m.Stop()
		case <-m.stopChan:
		}
	}()

	return m
}

func newRootModel(mon Monitor, cfg Config) *RootModel {
	statusBar := components.NewStatusBarModel()
	statusBar.SetCompact(cfg.Compact)

	return &RootModel{
		header:    components.NewHeaderModel(cfg.Version, cfg.Callsign),
		display:   components.NewDisplayModel(),
		history:   components.NewHistoryModel(),
		logs:      components.NewLogsModel(),
		statusBar: statusBar,
		help:      components.NewHelpModel(),
		monitor:   mon,
		focus:     FocusHistory,
		compact:   cfg.Compact,
	}
}

// Run starts the TUI application and blocks until it exits
func (m *Manager) Run() error {
	if os.Getenv("TERM") == "" {
		_ = os.Setenv("TERM", "xterm-256color")
	}

	m.program = tea.NewProgram(
		m.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := m.program.Run()

	log.SetOutput(m.originalOut)

	if m.triggerShutdown != nil {
		m.triggerShutdown()
	}

	close(m.doneChan)

	return err
}

// Stop stops the TUI application
func (m *Manager) Stop() {
	select {
	case <-m.stopChan:
		return
	default:
		close(m.stopChan)
	}

	if m.unsubscribe != nil {
		m.unsubscribe()
	}

	log.SetOutput(m.originalOut)

	if m.program != nil {
		m.program.Quit()
	}
}

// Done returns a channel that closes when TUI is stopped
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// RootModel methods

// Init initializes the model
func (m *RootModel) Init() tea.Cmd {
	return tea.Batch(
		ListenEvents(m.eventCh),
		ListenHistory(m.refreshCh),
		ListenLogs(m.logCh),
		ListenShutdown(m.stopCh),
		func() tea.Msg { return RefreshMsg{} },
		SendLog(log.InfoLevel, "parrot TUI started. Press ? for help, q to quit."),
	)
}

// Update handles messages
func (m *RootModel) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	// Panic recovery to prevent TUI crash from leaving terminal in broken state
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("TUI Update panic recovered: %v", r)
			model = m
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case MonitorEventMsg:
		m.handleMonitorEvent(msg.Event)
		return m, ListenEvents(m.eventCh)
	case HistoryRefreshMsg:
		m.refreshHistory()
		return m, ListenHistory(m.refreshCh)
	case LogEntryMsg:
		m.logs.AppendLog(msg.Level, msg.Message, msg.Time)
		return m, ListenLogs(m.logCh)
	case RefreshMsg:
		m.refreshAll()
	case ShutdownMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m *RootModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	if m.help.IsVisible() {
		return m.help.View()
	}

	sections := []string{
		m.header.View(),
		m.display.View(),
		m.sectionTitle("History", FocusHistory),
		lipgloss.NewStyle().Height(m.historyHeight).Render(m.history.View()),
	}

	if m.compact {
		sections = append(sections,
			m.sectionTitle("Logs", FocusLogs),
			lipgloss.NewStyle().Height(m.logsHeight).Render(m.logs.View()),
		)
	}

	sections = append(sections, m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *RootModel) sectionTitle(title string, f Focus) string {
	accent := " "
	if m.focus == f {
		accent = styles.FocusAccentStyle.Render("▌")
	}
	return accent + styles.SectionTitleStyle.Render(title)
}

// updateSizes recalculates component sizes. In compact view the history
// table shares the space with the logs pane; expanded it takes all of it.
func (m *RootModel) updateSizes() {
	m.display.SetWidth(m.width)
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	fixed := lipgloss.Height(m.header.View()) +
		lipgloss.Height(m.display.View()) +
		lipgloss.Height(m.statusBar.View()) +
		1 // history title

	available := m.height - fixed
	if available < 6 {
		available = 6
	}

	contentWidth := m.width
	if contentWidth < 20 {
		contentWidth = 20
	}

	if m.compact {
		// logs title takes one line
		available--
		logsHeight := available / 3
		if logsHeight < 3 {
			logsHeight = 3
		}
		historyHeight := available - logsHeight
		if historyHeight < 5 {
			historyHeight = 5
		}
		m.historyHeight = historyHeight
		m.logsHeight = logsHeight
	} else {
		m.historyHeight = available
		m.logsHeight = 0
	}

	m.history.SetSize(contentWidth, m.historyHeight)
	if m.logsHeight > 0 {
		m.logs.SetSize(contentWidth, m.logsHeight)
	}
}

// toggleCompact switches between the condensed and expanded history view
func (m *RootModel) toggleCompact() {
	m.compact = !m.compact
	m.statusBar.SetCompact(m.compact)
	if !m.compact && m.focus == FocusLogs {
		m.setFocus(FocusHistory)
	}
	m.updateSizes()
}

func (m *RootModel) setFocus(f Focus) {
	m.focus = f
	m.history.SetFocus(f == FocusHistory)
	m.logs.SetFocus(f == FocusLogs)
}

// cycleFocus switches focus between components
func (m *RootModel) cycleFocus() {
	if m.focus == FocusHistory && m.compact {
		m.setFocus(FocusLogs)
		return
	}
	m.setFocus(FocusHistory)
}

func (m *RootModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help, _ = m.help.Update(msg)
	m.updateSizes()
}

// handleKeyMsg handles keyboard input
func (m *RootModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help modal captures all input when visible
	if m.help.IsVisible() {
		m.help, _ = m.help.Update(msg)
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.help.Toggle()
		return m, nil
	case "tab":
		m.cycleFocus()
		return m, nil
	case "x":
		n := m.monitor.ClearHistory()
		m.refreshHistory()
		return m, SendLog(log.InfoLevel, fmt.Sprintf("Cleared %d history rows", n))
	case "c":
		m.toggleCompact()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusHistory:
		m.history, cmd = m.history.Update(msg)
	case FocusLogs:
		m.logs, cmd = m.logs.Update(msg)
	}
	return m, cmd
}

// handleMouseMsg routes wheel scrolling to the focused component
func (m *RootModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonWheelUp && msg.Button != tea.MouseButtonWheelDown {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusHistory:
		m.history, cmd = m.history.Update(msg)
	case FocusLogs:
		m.logs, cmd = m.logs.Update(msg)
	}
	return m, cmd
}

// handleMonitorEvent applies a monitor event to the visible components
func (m *RootModel) handleMonitorEvent(e events.Event) {
	switch e.Type {
	case events.IndicatorChanged, events.RoomChanged, events.CallSuppressed, events.TransmissionEnded:
		m.display.SetSnapshot(m.monitor.Display())
	case events.StreamConnected, events.StreamDisconnected, events.StreamError:
		if e.Type == events.StreamError && e.Error != nil {
			m.logs.AppendLog(log.WarnLevel, fmt.Sprintf("Stream %s: %v", e.Stream, e.Error), e.Timestamp)
		}
	case events.CallReceived, events.CallDisplayed, events.HistoryCleared, events.LogMessage,
		events.ShutdownStarted, events.ShutdownComplete:
		// history changes arrive debounced as HistoryRefreshMsg
	}
	m.statusBar.UpdateStats(m.monitor.Summary(), m.monitor.Streams())
}

func (m *RootModel) refreshHistory() {
	m.history.SetRows(m.monitor.History().Rows())
	m.display.SetSnapshot(m.monitor.Display())
	m.statusBar.UpdateStats(m.monitor.Summary(), m.monitor.Streams())
}

func (m *RootModel) refreshAll() {
	m.refreshHistory()
	if m.width > 0 {
		m.updateSizes()
	}
}

// tuiLogHook is a logrus hook that sends logs to the TUI
type tuiLogHook struct {
	logCh chan<- LogEntryMsg
}

func (h *tuiLogHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *tuiLogHook) Fire(entry *log.Entry) error {
	select {
	case h.logCh <- LogEntryMsg{
		Level:   entry.Level,
		Message: entry.Message,
		Time:    entry.Time,
	}:
	default:
		// Buffer full, drop
	}
	return nil
}
