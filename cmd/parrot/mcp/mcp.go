// Package mcp provides the MCP (Model Context Protocol) subcommand for parrot.
// This command starts an MCP server that connects to a running
// "parrot watch --api" instance, so AI assistants can read the current
// call and history.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/txn2/parrot/pkg/prtcfg"
	"github.com/txn2/parrot/pkg/prtmcp"
)

var (
	apiURL  string
	verbose bool
)

// Version is set by the main package
var Version string

func init() {
	Cmd.Flags().StringVar(&apiURL, "api-url", fmt.Sprintf("http://127.0.0.1:%d", prtcfg.DefaultAPIPort), "URL of the parrot monitor API")
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// Cmd is the MCP subcommand
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (connects to the parrot monitor API)",
	Long: `Start an MCP (Model Context Protocol) server that connects to a running
parrot monitor via its REST API.

Prerequisites:
  1. Start the monitor with the API enabled:
     parrot watch --api

  2. Configure your MCP client:
     {
       "mcpServers": {
         "parrot": {
           "command": "parrot",
           "args": ["mcp"]
         }
       }
     }

The MCP server provides tools for:
  - Reading the current call, source and linked room
  - Listing and clearing the call history
  - Checking stream status and recent logs`,
	Example: `  # Start MCP server (connects to http://127.0.0.1:8000)
  parrot mcp

  # Connect to a monitor on another host
  parrot mcp --api-url http://shack-pc.local:8000

  # With verbose logging (logs go to stderr, not interfering with stdio MCP)
  parrot mcp --verbose`,
	Run: runMCP,
}

func runMCP(_ *cobra.Command, _ []string) {
	// stdout carries the MCP stdio transport
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	log.Infof("Starting parrot MCP server (version %s)", Version)
	log.Infof("Connecting to monitor API at: %s", apiURL)

	// The provider is always set; when the API is down its calls return
	// api_unavailable errors with instructions.
	if err := verifyAPIConnection(apiURL); err != nil {
		log.Warnf("Cannot connect to parrot API at %s: %v", apiURL, err)
		log.Warn("MCP server will start but tools require the monitor to be running.")
		log.Warn("Start it in another terminal with: parrot watch --api")
	} else {
		log.Info("API connection verified")
	}

	server := prtmcp.New(Version, prtmcp.NewMonitorHTTP(apiURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			server.Stop()
		case <-ctx.Done():
		}
	}()

	log.Info("MCP server initialized, starting stdio transport...")

	if err := server.Run(ctx); err != nil {
		log.Errorf("MCP server error: %v", err)
		os.Exit(1)
	}

	log.Info("MCP server stopped")
}

// verifyAPIConnection checks if the monitor API is reachable
func verifyAPIConnection(baseURL string) error {
	client := prtmcp.NewHTTPClient(baseURL)

	var resp struct {
		Status string `json:"status"`
	}
	if err := client.Get("/api/health", &resp); err != nil {
		return errors.Wrap(err, "health check failed")
	}
	return nil
}
