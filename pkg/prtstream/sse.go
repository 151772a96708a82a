package prtstream

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/r3labs/sse/v2"
	backoff "gopkg.in/cenkalti/backoff.v1"
)

// SSESource reads log lines from a log server's /watch_log endpoint. Each
// line of an event's data is one log line; events without data are skipped.
type SSESource struct {
	URL    string
	Client *http.Client
}

// NewSSESource builds the watch_log URL for a server. override selects a
// different log prefix on the server (for example "YSFGateway").
func NewSSESource(serverURL, override string) (*SSESource, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid server url %q", serverURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("server url %q must include scheme and host", serverURL)
	}
	if !strings.HasSuffix(u.Path, "/watch_log") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/watch_log"
	}
	if override != "" {
		q := u.Query()
		q.Set("log_override", override)
		u.RawQuery = q.Encode()
	}
	return &SSESource{URL: u.String()}, nil
}

// Target returns the stream URL
func (s *SSESource) Target() string {
	return s.URL
}

// Stream holds one SSE connection open. Reconnects belong to the Runner,
// so the client gives up after the first failure.
func (s *SSESource) Stream(ctx context.Context, onConnect func(), handle LineHandler) error {
	client := sse.NewClient(s.URL)
	if s.Client != nil {
		client.Connection = s.Client
	}
	client.ReconnectStrategy = &backoff.StopBackOff{}
	client.ResponseValidator = func(_ *sse.Client, resp *http.Response) error {
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return errors.Errorf("unexpected status %s", resp.Status)
		}
		if onConnect != nil {
			onConnect()
		}
		return nil
	}

	err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if len(msg.Data) == 0 {
			return
		}
		for _, line := range strings.Split(string(msg.Data), "\n") {
			handle(line)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "reading stream")
	}
	return nil
}
