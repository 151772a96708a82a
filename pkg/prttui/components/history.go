package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/txn2/parrot/pkg/prthistory"
	"github.com/txn2/parrot/pkg/prttui/styles"
)

// Column keys
const (
	colKeyID        = "_id" // Hidden row identity
	colKeyNumber    = "number"
	colKeyTimestamp = "timestamp"
	colKeySource    = "source"
	colKeyCallsign  = "callsign"
)

// HistoryModel displays the call history table, oldest call first.
// While following, the newest row stays highlighted and in view.
type HistoryModel struct {
	table     table.Model
	rows      []prthistory.Row
	width     int
	height    int
	pageSize  int
	focused   bool
	following bool
}

// NewHistoryModel creates a new history model
func NewHistoryModel() HistoryModel {
	m := HistoryModel{
		focused:   true,
		following: true,
	}

	m.table = table.New(buildHistoryColumns()).
		WithBaseStyle(lipgloss.NewStyle().Padding(0, 1)).
		BorderRounded().
		HeaderStyle(styles.TableHeaderStyle).
		HighlightStyle(styles.TableSelectedStyle).
		Focused(true).
		WithPageSize(10).
		WithFooterVisibility(false)

	return m
}

func buildHistoryColumns() []table.Column {
	return []table.Column{
		table.NewColumn(colKeyNumber, "#", 6),
		table.NewColumn(colKeyTimestamp, "Timestamp", 25),
		table.NewColumn(colKeySource, "Source", 9),
		table.NewFlexColumn(colKeyCallsign, "Callsign", 2),
	}
}

// Update handles messages for the history table
func (m *HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table = m.table.WithTargetWidth(m.width - 2)

	case tea.MouseMsg:
		m.handleMouseMsg(msg)
		return *m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "g", "home":
			m.following = false
			m.table = m.table.PageFirst()
			return *m, nil
		case "G", "end":
			m.follow()
			return *m, nil
		case "pgdown":
			m.table = m.table.PageDown()
			return *m, nil
		case "pgup":
			m.following = false
			m.table = m.table.PageUp()
			return *m, nil
		case "k", "up":
			m.following = false
		}
	}

	m.table, cmd = m.table.Update(msg)
	if m.atEnd() {
		m.following = true
	}
	return *m, cmd
}

func (m *HistoryModel) handleMouseMsg(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.following = false
		m.table = m.table.WithHighlightedRow(m.table.GetHighlightedRowIndex() - 3)
	case tea.MouseButtonWheelDown:
		m.table = m.table.WithHighlightedRow(m.table.GetHighlightedRowIndex() + 3)
		if m.atEnd() {
			m.following = true
		}
	default:
	}
}

func (m *HistoryModel) atEnd() bool {
	return len(m.rows) == 0 || m.table.GetHighlightedRowIndex() >= len(m.rows)-1
}

func (m *HistoryModel) follow() {
	m.following = true
	if len(m.rows) > 0 {
		m.table = m.table.WithHighlightedRow(len(m.rows) - 1)
	}
}

// SetRows replaces the table contents. Rows are expected oldest first.
func (m *HistoryModel) SetRows(rows []prthistory.Row) {
	m.rows = rows

	tableRows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		tableRows = append(tableRows, table.NewRow(table.RowData{
			colKeyID:        r.ID,
			colKeyNumber:    fmt.Sprintf("%d", i+1),
			colKeyTimestamp: r.TimestampText(),
			colKeySource:    table.NewStyledCell(r.Source.String(), sourceStyle(r.Source)),
			colKeyCallsign:  r.Callsign,
		}))
	}

	m.table = m.table.WithRows(tableRows)
	if m.width > 0 {
		m.table = m.table.WithTargetWidth(m.width - 2)
	}
	if m.following {
		m.follow()
	}
}

// Rows returns the rows currently shown
func (m *HistoryModel) Rows() []prthistory.Row {
	return m.rows
}

// IsFollowing reports whether the table tracks the newest row
func (m *HistoryModel) IsFollowing() bool {
	return m.following
}

// SelectedCallsign returns the callsign of the highlighted row
func (m *HistoryModel) SelectedCallsign() string {
	row := m.table.HighlightedRow()
	if row.Data == nil {
		return ""
	}
	if cs, ok := row.Data[colKeyCallsign].(string); ok {
		return cs
	}
	return ""
}

// View renders the history table
func (m *HistoryModel) View() string {
	if len(m.rows) == 0 {
		return styles.DisplayIdleStyle.Render(" No calls yet")
	}
	return m.table.View()
}

// SetFocus sets the focus state of the table
func (m *HistoryModel) SetFocus(focused bool) {
	m.focused = focused
	m.table = m.table.Focused(focused)
}

// SetSize updates the table dimensions
func (m *HistoryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table = m.table.WithTargetWidth(width - 2)
	// Table chrome with BorderRounded(): top border, header, separator, bottom border
	pageSize := height - 4
	if pageSize < 1 {
		pageSize = 1
	}
	m.pageSize = pageSize
	m.table = m.table.WithPageSize(pageSize)
	if m.following {
		m.follow()
	}
}
