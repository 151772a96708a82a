package prtmcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetHistoryInput is the input for get_history
type GetHistoryInput struct {
	Count    int    `json:"count,omitempty" jsonschema:"Number of most recent calls to return (default 20, max 1000)"`
	Callsign string `json:"callsign,omitempty" jsonschema:"Only return calls from this callsign (case-insensitive)"`
}

// GetLogsInput is the input for get_logs
type GetLogsInput struct {
	Count  int    `json:"count,omitempty" jsonschema:"Number of log entries to return (default 50, max 500)"`
	Level  string `json:"level,omitempty" jsonschema:"Filter by log level: debug, info, warning, error or all"`
	Search string `json:"search,omitempty" jsonschema:"Only return entries whose message contains this text"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_current_call",
		Description: "Get what the radio display shows right now: the last callsign heard, when, whether it arrived over RF or the network, the linked room and whether a transmission is in progress.",
	}, s.handleGetCurrentCall)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_status",
		Description: "Get the display plus pipeline counters (received, displayed, suppressed duplicates, queued) and the connection state of each log stream.",
	}, s.handleGetStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_history",
		Description: "List recently displayed calls, most recent first. Optionally filter by callsign.",
	}, s.handleGetHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "clear_history",
		Description: "Remove all rows from the call history. The current display is not affected.",
	}, s.handleClearHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_logs",
		Description: "Get parrot's own log entries, most recent first, for troubleshooting stream connections.",
	}, s.handleGetLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_health",
		Description: "Get parrot's version, uptime and which features are enabled.",
	}, s.handleGetHealth)
}

func (s *Server) handleGetCurrentCall(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	d, err := p.Display()
	if err != nil {
		return nil, nil, err
	}

	result := map[string]interface{}{
		"callsign":  d.Callsign,
		"timestamp": d.Timestamp,
		"source":    d.Source,
		"room":      d.Room,
		"linked":    d.Linked,
		"active":    d.Blinking,
	}

	text := "No call received yet"
	if d.Callsign != "" {
		text = fmt.Sprintf("%s at %s via %s", d.Callsign, d.Timestamp, d.Source)
		if d.Blinking {
			text += " (transmitting)"
		}
	}
	if d.Room != "" {
		text += fmt.Sprintf(", linked to %s", d.Room)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, result, nil
}

func (s *Server) handleGetStatus(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	st, err := p.Status()
	if err != nil {
		return nil, nil, err
	}

	streams := make([]map[string]interface{}, 0, len(st.Streams))
	for _, sr := range st.Streams {
		stream := map[string]interface{}{
			"name":   sr.Name,
			"target": sr.Target,
			"status": sr.Status,
			"lines":  sr.Lines,
		}
		if sr.Error != "" {
			stream["error"] = sr.Error
		}
		streams = append(streams, stream)
	}

	result := map[string]interface{}{
		"display": map[string]interface{}{
			"callsign": st.Display.Callsign,
			"source":   st.Display.Source,
			"room":     st.Display.Room,
			"active":   st.Display.Blinking,
		},
		"summary": map[string]interface{}{
			"received":   st.Summary.Received,
			"displayed":  st.Summary.Displayed,
			"suppressed": st.Summary.Suppressed,
			"pending":    st.Summary.Pending,
			"history":    st.Summary.HistoryRows,
		},
		"streams": streams,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%d calls received, %d displayed, %d duplicates suppressed (%d/%d streams connected)",
				st.Summary.Received, st.Summary.Displayed, st.Summary.Suppressed, st.Summary.Connected, st.Summary.Streams)},
		},
	}, result, nil
}

func (s *Server) handleGetHistory(ctx context.Context, req *mcp.CallToolRequest, input GetHistoryInput) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	count := input.Count
	if count < 0 {
		return nil, nil, NewInvalidInputError("count", "must not be negative")
	}
	if count == 0 {
		count = 20
	}
	if count > 1000 {
		count = 1000
	}

	rows, err := p.History(count)
	if err != nil {
		return nil, nil, err
	}

	calls := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		if input.Callsign != "" && !strings.EqualFold(r.Callsign, input.Callsign) {
			continue
		}
		calls = append(calls, map[string]interface{}{
			"timestamp": r.Timestamp,
			"source":    r.Source,
			"callsign":  r.Callsign,
		})
	}

	result := map[string]interface{}{
		"calls": calls,
		"count": len(calls),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Retrieved %d calls", len(calls))},
		},
	}, result, nil
}

func (s *Server) handleClearHistory(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	n, err := p.ClearHistory()
	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Cleared %d history rows", n)},
		},
	}, map[string]interface{}{"cleared": n}, nil
}

func (s *Server) handleGetLogs(ctx context.Context, req *mcp.CallToolRequest, input GetLogsInput) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	count := input.Count
	if count <= 0 {
		count = 50
	}
	if count > 500 {
		count = 500
	}

	level := strings.ToLower(input.Level)
	if level == "all" {
		level = ""
	}

	entries, err := p.Logs(count, level)
	if err != nil {
		return nil, nil, err
	}

	var filtered []map[string]interface{}
	for _, e := range entries {
		if input.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(input.Search)) {
			continue
		}
		filtered = append(filtered, map[string]interface{}{
			"timestamp": e.Timestamp,
			"level":     e.Level,
			"message":   e.Message,
		})
	}

	result := map[string]interface{}{
		"logs":  filtered,
		"count": len(filtered),
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Retrieved %d log entries", len(filtered))},
		},
	}, result, nil
}

func (s *Server) handleGetHealth(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	p := s.getProvider()
	if p == nil {
		return nil, nil, NewProviderUnavailableError()
	}

	info, err := p.Info()
	if err != nil {
		return nil, nil, err
	}

	result := map[string]interface{}{
		"version":        info.Version,
		"uptime":         info.Uptime,
		"callsign":       info.Callsign,
		"monitorEnabled": info.MonitorEnabled,
		"logsEnabled":    info.LogsEnabled,
		"tuiEnabled":     info.TUIEnabled,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("parrot %s: up %s", info.Version, info.Uptime)},
		},
	}, result, nil
}
