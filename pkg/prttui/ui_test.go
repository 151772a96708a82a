package prttui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prtmonitor"
	"github.com/txn2/parrot/pkg/prttui/events"
)

func newTestMonitor(t *testing.T) *prtmonitor.Monitor {
	t.Helper()
	m := prtmonitor.New(prtmonitor.Config{BlinkInterval: time.Hour})
	t.Cleanup(m.Stop)
	return m
}

func newTestModel(t *testing.T, mon *prtmonitor.Monitor) *RootModel {
	t.Helper()
	m := newRootModel(mon, Config{Version: "1.0.0", Callsign: "M0XYZ", Compact: true})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func displayCall(mon *prtmonitor.Monitor, line string) {
	mon.HandleLine(prtcall.StreamPrimary, line)
	mon.Tick()
}

func TestRootModel_ViewShowsDisplayAndHistory(t *testing.T) {
	mon := newTestMonitor(t)
	m := newTestModel(t, mon)

	view := m.View()
	if !strings.Contains(view, "parrot") || !strings.Contains(view, "M0XYZ") {
		t.Error("Expected header with title and callsign")
	}
	if !strings.Contains(view, "Waiting for calls") {
		t.Error("Expected idle display before the first call")
	}

	displayCall(mon, "2024-04-04 12:00:01.123 G4ABC RF")
	m.Update(HistoryRefreshMsg{})

	view = m.View()
	if !strings.Contains(view, "G4ABC") {
		t.Error("Expected callsign in view after refresh")
	}
	if !strings.Contains(view, "2024-04-04 12:00:01.123") {
		t.Error("Expected call timestamp in view")
	}
	if len(m.history.Rows()) != 1 {
		t.Errorf("Expected 1 history row, got %d", len(m.history.Rows()))
	}
}

func TestRootModel_ClearHistoryKey(t *testing.T) {
	mon := newTestMonitor(t)
	m := newTestModel(t, mon)

	displayCall(mon, "2024-04-04 12:00:01.123 G4ABC RF")
	displayCall(mon, "2024-04-04 12:00:05.000 M0DEF network")
	m.Update(HistoryRefreshMsg{})

	_, cmd := m.Update(key("x"))
	if cmd == nil {
		t.Fatal("Expected a log command after clearing")
	}
	if msg, ok := cmd().(LogEntryMsg); !ok || !strings.Contains(msg.Message, "Cleared 2") {
		t.Errorf("Unexpected clear log %+v", msg)
	}

	if mon.History().Len() != 0 || len(m.history.Rows()) != 0 {
		t.Error("Expected history cleared in monitor and table")
	}
	// the display keeps the last call
	if !m.display.Snapshot().HasCall || m.display.Snapshot().Call.Callsign != "M0DEF" {
		t.Errorf("Expected display untouched, got %+v", m.display.Snapshot())
	}
}

func TestRootModel_ToggleCompact(t *testing.T) {
	mon := newTestMonitor(t)
	m := newTestModel(t, mon)

	if !m.compact || m.logsHeight == 0 {
		t.Fatal("Expected compact view with logs pane")
	}
	compactHistory := m.historyHeight

	m.Update(key("tab"))
	if m.focus != FocusLogs {
		t.Error("Expected focus on logs after tab")
	}

	m.Update(key("c"))
	if m.compact {
		t.Error("Expected expanded view after toggle")
	}
	if m.logsHeight != 0 || m.historyHeight <= compactHistory {
		t.Errorf("Expected history to take the logs space, got history=%d logs=%d", m.historyHeight, m.logsHeight)
	}
	if m.focus != FocusHistory {
		t.Error("Expected focus back on history when logs are hidden")
	}
	if strings.Contains(m.View(), "Logs") {
		t.Error("Expected logs pane hidden in expanded view")
	}

	m.Update(key("tab"))
	if m.focus != FocusHistory {
		t.Error("Expected tab to keep focus on history in expanded view")
	}

	m.Update(key("c"))
	if !m.compact || m.logsHeight == 0 {
		t.Error("Expected compact view restored")
	}
}

func TestRootModel_HelpAndQuit(t *testing.T) {
	mon := newTestMonitor(t)
	m := newTestModel(t, mon)

	m.Update(key("?"))
	if !m.help.IsVisible() {
		t.Fatal("Expected help visible")
	}
	if !strings.Contains(m.View(), "Clear history") {
		t.Error("Expected help content")
	}

	// q closes help instead of quitting
	if _, cmd := m.Update(key("q")); cmd != nil || m.help.IsVisible() {
		t.Error("Expected q to close help")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if m.View() != "Shutting down...\n" {
		t.Error("Expected shutdown view")
	}
}

func TestRootModel_MonitorEvents(t *testing.T) {
	mon := newTestMonitor(t)
	m := newTestModel(t, mon)

	mon.HandleLine(prtcall.StreamSecondary, "Linked to FCS00390")
	m.Update(MonitorEventMsg{Event: events.NewRoomEvent("FCS00390")})

	if m.display.Snapshot().Room != "FCS00390" {
		t.Errorf("Expected room on display, got %q", m.display.Snapshot().Room)
	}

	m.Update(MonitorEventMsg{Event: events.NewStreamEvent(events.StreamError, "primary", errTest)})
	if m.logs.Len() != 1 {
		t.Errorf("Expected stream error in logs pane, got %d entries", m.logs.Len())
	}

	m.Update(LogEntryMsg{Level: log.InfoLevel, Message: "hello", Time: time.Now()})
	if m.logs.Len() != 2 {
		t.Errorf("Expected log entry appended, got %d", m.logs.Len())
	}
}

func TestRootModel_UpdateRecoversPanic(t *testing.T) {
	m := newRootModel(nil, Config{})
	// nil monitor panics inside the handler
	model, cmd := m.Update(key("x"))
	if model != m || cmd != nil {
		t.Error("Expected panic to be recovered")
	}
}

func TestManager_DebouncedHistoryRefresh(t *testing.T) {
	mon := newTestMonitor(t)
	mon.Bus().Start()
	defer mon.Bus().Stop()

	shutdown := make(chan struct{})
	mgr := New(mon, Config{Version: "test"}, shutdown, nil)
	defer mgr.Stop()

	// a burst of displayed calls collapses into one refresh
	for _, cs := range []string{"G4ABC", "M0DEF", "2E0GHI"} {
		displayCall(mon, "2024-04-04 12:00:01.123 "+cs+" RF")
	}

	cmd := ListenHistory(mgr.model.refreshCh)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if _, ok := msg.(HistoryRefreshMsg); !ok {
			t.Fatalf("Expected HistoryRefreshMsg, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("history refresh never requested")
	}

	time.Sleep(3 * HistoryDebounce)
	select {
	case <-mgr.model.refreshCh:
		t.Error("Expected a single coalesced refresh")
	default:
	}

	close(shutdown)
	deadline := time.After(time.Second)
	for {
		select {
		case <-mgr.stopChan:
			return
		case <-deadline:
			t.Fatal("shutdown channel did not stop the manager")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestTUILogHook(t *testing.T) {
	ch := make(chan LogEntryMsg, 1)
	hook := &tuiLogHook{logCh: ch}

	if len(hook.Levels()) != len(log.AllLevels) {
		t.Error("Expected all levels")
	}

	_ = hook.Fire(&log.Entry{Level: log.WarnLevel, Message: "first"})
	// full buffer drops instead of blocking
	_ = hook.Fire(&log.Entry{Level: log.WarnLevel, Message: "second"})

	if got := <-ch; got.Message != "first" {
		t.Errorf("Expected first entry, got %q", got.Message)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("connection refused")
