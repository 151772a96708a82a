package prtmcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
)

const resourceHistoryRows = 100

func (s *Server) registerResources() {
	// parrot://display - what the operator sees
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "parrot://display",
		Name:        "Radio Display",
		Description: "Current callsign, timestamp, source, linked room and transmit indicator",
		MIMEType:    "application/json",
	}, s.handleDisplayResource)

	// parrot://history - recent calls
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "parrot://history",
		Name:        "Call History",
		Description: "The most recent displayed calls, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	// parrot://status - counters and stream state
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "parrot://status",
		Name:        "Pipeline Status",
		Description: "Call counters and the connection state of each log stream",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

func (s *Server) handleDisplayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p := s.getProvider()
	if p == nil {
		return nil, NewProviderUnavailableError()
	}
	d, err := p.Display()
	if err != nil {
		return nil, err
	}
	return jsonResource(req, d)
}

func (s *Server) handleHistoryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p := s.getProvider()
	if p == nil {
		return nil, NewProviderUnavailableError()
	}
	rows, err := p.History(resourceHistoryRows)
	if err != nil {
		return nil, err
	}
	return jsonResource(req, rows)
}

func (s *Server) handleStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p := s.getProvider()
	if p == nil {
		return nil, NewProviderUnavailableError()
	}
	st, err := p.Status()
	if err != nil {
		return nil, err
	}
	return jsonResource(req, st)
}

func jsonResource(req *mcp.ReadResourceRequest, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
