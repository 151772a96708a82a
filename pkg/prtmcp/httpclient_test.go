package prtmcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

func envelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.Response{Success: true, Data: data})
}

func TestHTTPClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET method, got %s", r.Method)
		}
		if r.URL.Path != "/test" {
			t.Errorf("Expected /test path, got %s", r.URL.Path)
		}
		envelope(w, map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL + "/")
	if client.BaseURL() != server.URL {
		t.Errorf("Expected trailing slash trimmed, got %s", client.BaseURL())
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := client.Get("/test", &result); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", result.Status)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not successful", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(types.Response{
				Success: false,
				Error:   &types.ErrorInfo{Code: "NOT_READY", Message: "monitor not available"},
			})
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			var result interface{}
			if err := NewHTTPClient(server.URL).Get("/x", &result); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestHTTPClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewHTTPClient(url).Get("/api/health", nil)
	var mcpErr *MCPError
	if !errors.As(err, &mcpErr) || mcpErr.Code != ErrCodeAPIUnavailable {
		t.Fatalf("Expected api_unavailable error, got %v", err)
	}
	if !mcpErr.RetryRecommended {
		t.Error("Expected retry to be recommended")
	}
}

func TestMonitorHTTP_Requests(t *testing.T) {
	var gotMethod, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		switch r.URL.Path {
		case "/api/v1/history":
			if r.Method == http.MethodDelete {
				envelope(w, types.ClearHistoryResponse{Cleared: 4})
				return
			}
			envelope(w, []types.HistoryRowResponse{{Callsign: "M0ABC", Source: "RF"}})
		case "/api/v1/logs":
			envelope(w, []types.LogBufferEntry{{Level: "error", Message: "stream dropped"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := NewMonitorHTTP(server.URL)

	rows, err := p.History(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Callsign != "M0ABC" || gotQuery != "count=7" {
		t.Errorf("Unexpected history %+v (query %q)", rows, gotQuery)
	}

	n, err := p.ClearHistory()
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || gotMethod != http.MethodDelete {
		t.Errorf("Expected DELETE clearing 4 rows, got %s %d", gotMethod, n)
	}

	entries, err := p.Logs(10, "error")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || gotQuery != "count=10&level=error" {
		t.Errorf("Unexpected logs %+v (query %q)", entries, gotQuery)
	}

	if _, err := p.Display(); err == nil {
		t.Error("Expected error for unknown route")
	}
}
