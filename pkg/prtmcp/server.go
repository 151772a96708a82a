// Package prtmcp provides an MCP (Model Context Protocol) server for parrot.
// AI assistants use it to read the radio display, recent calls and logs of
// a running parrot instance through its REST API.
package prtmcp

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server manages the MCP server lifecycle
type Server struct {
	mcpServer *mcp.Server
	version   string
	provider  Provider

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

// New creates an MCP server backed by provider
func New(version string, provider Provider) *Server {
	s := &Server{
		version:  version,
		provider: provider,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	s.setupServer()
	return s
}

// SetProvider replaces the monitor provider
func (s *Server) SetProvider(p Provider) {
	s.mu.Lock()
	s.provider = p
	s.mu.Unlock()
}

func (s *Server) setupServer() {
	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    "parrot",
		Version: s.version,
	}, nil)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()
}

// Run starts the MCP server on stdio transport (blocking)
func (s *Server) Run(ctx context.Context) error {
	defer close(s.doneCh)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	return s.mcpServer.Run(runCtx, &mcp.StdioTransport{})
}

// Stop signals the server to stop
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done returns a channel that closes when the server stops
func (s *Server) Done() <-chan struct{} {
	return s.doneCh
}

func (s *Server) getProvider() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}
