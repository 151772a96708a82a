package prtmcp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

// Provider is what the MCP tools need from a running parrot monitor
type Provider interface {
	Display() (*types.DisplayResponse, error)
	Status() (*types.StatusResponse, error)
	History(count int) ([]types.HistoryRowResponse, error)
	ClearHistory() (int, error)
	Logs(count int, level string) ([]types.LogBufferEntry, error)
	Info() (*types.InfoResponse, error)
}

// HTTPClient wraps http.Client with base URL
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client for the parrot API
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the response data into result
func (c *HTTPClient) Get(path string, result interface{}) error {
	return c.do(http.MethodGet, path, result)
}

// Delete performs a DELETE request and decodes the response data into result
func (c *HTTPClient) Delete(path string, result interface{}) error {
	return c.do(http.MethodDelete, path, result)
}

func (c *HTTPClient) do(method, path string, result interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return NewAPIUnavailableError(c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Success bool             `json:"success"`
		Data    json.RawMessage  `json:"data"`
		Error   *types.ErrorInfo `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return errors.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return errors.New("API request was not successful")
	}
	if result == nil || len(envelope.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(envelope.Data, result), "failed to decode data")
}

// MonitorHTTP implements Provider via the REST API
type MonitorHTTP struct {
	client *HTTPClient
}

// NewMonitorHTTP creates a provider for the API at baseURL (e.g. http://pi-star:8000)
func NewMonitorHTTP(baseURL string) *MonitorHTTP {
	return &MonitorHTTP{client: NewHTTPClient(baseURL)}
}

func (p *MonitorHTTP) Display() (*types.DisplayResponse, error) {
	var d types.DisplayResponse
	if err := p.client.Get("/api/v1/display", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *MonitorHTTP) Status() (*types.StatusResponse, error) {
	var s types.StatusResponse
	if err := p.client.Get("/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *MonitorHTTP) History(count int) ([]types.HistoryRowResponse, error) {
	var rows []types.HistoryRowResponse
	if err := p.client.Get("/api/v1/history?count="+strconv.Itoa(count), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *MonitorHTTP) ClearHistory() (int, error) {
	var resp types.ClearHistoryResponse
	if err := p.client.Delete("/api/v1/history", &resp); err != nil {
		return 0, err
	}
	return resp.Cleared, nil
}

func (p *MonitorHTTP) Logs(count int, level string) ([]types.LogBufferEntry, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	if level != "" {
		q.Set("level", level)
	}

	var entries []types.LogBufferEntry
	if err := p.client.Get("/api/v1/logs?"+q.Encode(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *MonitorHTTP) Info() (*types.InfoResponse, error) {
	var info types.InfoResponse
	if err := p.client.Get("/api/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

var _ Provider = (*MonitorHTTP)(nil)
