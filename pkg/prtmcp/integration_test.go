package prtmcp

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi"
	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prtmonitor"
)

// Drives the MCP tools against a real API backed by a real monitor.
func TestTools_AgainstAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mon := prtmonitor.New(prtmonitor.Config{BlinkInterval: time.Hour})
	defer mon.Stop()

	api := prtapi.NewManager("127.0.0.1:0", "test")
	api.SetMonitor(mon, mon)
	api.SetLogBuffer(prtapi.NewLogBuffer(10))
	ts := httptest.NewServer(api.Handler())
	defer ts.Close()

	server := New("test", NewMonitorHTTP(ts.URL))
	ctx := context.Background()

	mon.HandleLine(prtcall.StreamPrimary, "2024-04-04 12:00:01.123 M0ABC network")
	mon.Tick()

	_, data, err := server.handleGetCurrentCall(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	call := data.(map[string]interface{})
	if call["callsign"] != "M0ABC" || call["source"] != "Network" {
		t.Errorf("Unexpected current call %v", call)
	}

	_, data, err = server.handleGetHistory(ctx, nil, GetHistoryInput{Count: 5})
	if err != nil {
		t.Fatal(err)
	}
	if data.(map[string]interface{})["count"] != 1 {
		t.Errorf("Expected 1 history row, got %v", data)
	}

	_, data, err = server.handleClearHistory(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	if data.(map[string]interface{})["cleared"] != 1 {
		t.Errorf("Expected 1 cleared, got %v", data)
	}

	_, data, err = server.handleGetStatus(ctx, nil, struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	summary := data.(map[string]interface{})["summary"].(map[string]interface{})
	if summary["history"] != 0 {
		t.Errorf("Expected empty history after clear, got %v", summary)
	}

	if _, _, err := server.handleGetLogs(ctx, nil, GetLogsInput{}); err != nil {
		t.Errorf("Expected logs to be available, got %v", err)
	}
}
