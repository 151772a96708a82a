package prtmcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	// activity_report - summarize who has been on the air
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "activity_report",
		Description: "Summarize recent repeater activity: who was heard, over RF or the network, and which room is linked",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "count",
				Description: "How many recent calls to consider (default 50)",
				Required:    false,
			},
		},
	}, s.handleActivityReportPrompt)

	// troubleshoot_streams - diagnose missing calls
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "troubleshoot_streams",
		Description: "Diagnose why calls are not appearing on the display",
	}, s.handleTroubleshootPrompt)
}

func (s *Server) handleActivityReportPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	count := "50"
	if req.Params.Arguments != nil {
		if v, ok := req.Params.Arguments["count"]; ok && v != "" {
			count = v
		}
	}

	content := fmt.Sprintf(`You are summarizing activity on an amateur radio repeater monitored by parrot.

## Steps

1. Use 'get_current_call' to see what is on the display now and whether someone is transmitting.
2. Use 'get_history' with count %s to fetch recent calls.
3. Report:
   - How many distinct callsigns were heard
   - Which stations were heard over RF (local) and which over the network
   - The most active callsigns
   - The linked room, if any

Keep the report short. Callsigns are identifiers, quote them exactly.`, count)

	return &mcp.GetPromptResult{
		Description: "Repeater activity report",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: content},
			},
		},
	}, nil
}

func (s *Server) handleTroubleshootPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	content := `You are helping an operator whose parrot display is not showing calls.

## Steps

1. Use 'get_status' and check each stream's status. A stream that is not "connected" cannot deliver calls.
2. Use 'get_logs' with level "warning" and then "error" to find connection failures or rotated log files.
3. Compare the received and displayed counters. Many suppressed calls mean the same line is being delivered repeatedly.
4. Use 'get_health' to confirm the version and which features are enabled.

Explain the most likely cause and what the operator should check on the hotspot.`

	return &mcp.GetPromptResult{
		Description: "Stream troubleshooting guide",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: content},
			},
		},
	}, nil
}
