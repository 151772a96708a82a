package prtstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/state"
)

type lineCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCollector) add(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

func (c *lineCollector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestNewSSESource(t *testing.T) {
	tests := []struct {
		server   string
		override string
		want     string
		wantErr  bool
	}{
		{"http://repeater:8000", "", "http://repeater:8000/watch_log", false},
		{"http://repeater:8000/", "", "http://repeater:8000/watch_log", false},
		{"http://repeater:8000/watch_log", "YSFGateway", "http://repeater:8000/watch_log?log_override=YSFGateway", false},
		{"repeater:8000", "", "", true},
		{"://bad", "", "", true},
	}
	for _, tt := range tests {
		src, err := NewSSESource(tt.server, tt.override)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewSSESource(%q) expected error", tt.server)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewSSESource(%q) unexpected error: %v", tt.server, err)
			continue
		}
		if src.Target() != tt.want {
			t.Errorf("NewSSESource(%q) = %q, want %q", tt.server, src.Target(), tt.want)
		}
	}
}

func TestSSESource_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("log_override") != "YSFGateway" {
			t.Errorf("Expected log_override query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, ": connected\n\n")
		_, _ = fmt.Fprint(w, "data: Linked to FCS00390\n\n")
		_, _ = fmt.Fprint(w, "data: Disconnect by remote command\n\n")
	}))
	defer server.Close()

	src, err := NewSSESource(server.URL, "YSFGateway")
	if err != nil {
		t.Fatal(err)
	}

	var connected int32
	var got lineCollector
	err = src.Stream(context.Background(), func() { atomic.StoreInt32(&connected, 1) }, got.add)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if atomic.LoadInt32(&connected) != 1 {
		t.Error("Expected onConnect to be called")
	}
	lines := got.snapshot()
	if len(lines) != 2 || lines[0] != "Linked to FCS00390" || lines[1] != "Disconnect by remote command" {
		t.Errorf("Unexpected lines %q", lines)
	}
}

func TestSSESource_EventFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "id: 7\nevent: log\ndata: M: first line\ndata: M: second line\n\n")
		_, _ = fmt.Fprint(w, "event: ping\n\n")
		_, _ = fmt.Fprint(w, "data:no space\r\n\r\n")
	}))
	defer server.Close()

	src, _ := NewSSESource(server.URL, "")
	var got lineCollector
	if err := src.Stream(context.Background(), nil, got.add); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := got.snapshot()
	want := []string{"M: first line", "M: second line", "no space"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %q, got %q", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSSESource_CancelIsClean(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: hello\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	src, _ := NewSSESource(server.URL, "")
	ctx, cancel := context.WithCancel(context.Background())
	var got lineCollector
	done := make(chan error, 1)
	go func() { done <- src.Stream(ctx, nil, got.add) }()

	waitFor(t, func() bool { return len(got.snapshot()) == 1 })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
}

func TestSSESource_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src, _ := NewSSESource(server.URL, "")
	err := src.Stream(context.Background(), nil, func(string) {})
	if err == nil {
		t.Error("Expected error for 404")
	}
}

func TestResolveLogFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := ResolveLogFile(dir, "MMDVM"); err == nil {
		t.Error("Expected error for empty dir")
	}
	if _, err := ResolveLogFile(dir, ""); err == nil {
		t.Error("Expected error for empty prefix")
	}

	older := filepath.Join(dir, "MMDVM-2024-04-03.log")
	newer := filepath.Join(dir, "MMDVM-2024-04-04.log")
	other := filepath.Join(dir, "YSFGateway-2024-04-05.log")
	for _, p := range []string{older, newer, other} {
		if err := os.WriteFile(p, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	_ = os.Chtimes(older, past, past)

	got, err := ResolveLogFile(dir, "MMDVM")
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("Expected %s, got %s", newer, got)
	}
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MMDVM-2024-04-04.log")
	content := "one RF\ntwo network\nthree RF\nfour network\nfive RF"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := TailLines(path, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "four network" || lines[1] != "five RF" {
		t.Errorf("Unexpected tail %q", lines)
	}

	lines, _ = TailLines(path, 10, "RF")
	if len(lines) != 3 || lines[0] != "one RF" {
		t.Errorf("Unexpected filtered tail %q", lines)
	}

	lines, _ = TailLines(path, 2, "RF")
	if len(lines) != 1 || lines[0] != "five RF" {
		t.Errorf("Expected filter applied after tail, got %q", lines)
	}

	lines, _ = TailLines(path, 0, "")
	if len(lines) != 0 {
		t.Errorf("Expected no lines, got %q", lines)
	}

	if _, err := TailLines(filepath.Join(t.TempDir(), "missing.log"), 5, ""); err == nil {
		t.Error("Expected error for missing file")
	}
}

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(text); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_FollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MMDVM-2024-04-04.log")
	if err := os.WriteFile(path, []byte("old line M0OLD RF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Path: path}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got lineCollector
	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, func() { close(connected) }, got.add)
	}()

	<-connected
	appendTo(t, path, "2024-04-04 12:00:01.123 M0ABC RF\n2024-04-04 12:00:02.")
	waitFor(t, func() bool { return len(got.snapshot()) == 1 })

	// Partial line completes on the next write
	appendTo(t, path, "000 G4KLX network\n")
	waitFor(t, func() bool { return len(got.snapshot()) == 2 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Expected nil error on cancel, got %v", err)
	}

	lines := got.snapshot()
	if lines[0] != "2024-04-04 12:00:01.123 M0ABC RF" || lines[1] != "2024-04-04 12:00:02.000 G4KLX network" {
		t.Errorf("Unexpected lines %q", lines)
	}
}

func TestFileSource_FromStartAndTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MMDVM-2024-04-04.log")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Path: path, FromStart: true}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got lineCollector
	go func() { _ = src.Stream(ctx, nil, got.add) }()

	waitFor(t, func() bool { return len(got.snapshot()) == 2 })

	if err := os.Truncate(path, 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	appendTo(t, path, "after\n")

	waitFor(t, func() bool { return len(got.snapshot()) == 3 })
	if got.snapshot()[2] != "after" {
		t.Errorf("Expected 'after' following truncation, got %q", got.snapshot())
	}
}

func TestFileSource_NewerFileRotates(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "MMDVM-2024-04-03.log")
	if err := os.WriteFile(older, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	_ = os.Chtimes(older, past, past)

	src := &FileSource{Dir: dir, Prefix: "MMDVM", PollInterval: 5 * time.Millisecond}
	if src.Target() != filepath.Join(dir, "MMDVM-*.log") {
		t.Errorf("Unexpected target %s", src.Target())
	}

	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(context.Background(), func() { close(connected) }, func(string) {})
	}()
	<-connected

	if err := os.WriteFile(filepath.Join(dir, "MMDVM-2024-04-04.log"), []byte("new day\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrRotated) {
			t.Errorf("Expected ErrRotated, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected rotation to end the stream")
	}

	// The next connection reads the new file from its start
	var got lineCollector
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Stream(ctx, nil, got.add) }()
	waitFor(t, func() bool { return len(got.snapshot()) == 1 })
	if got.snapshot()[0] != "new day" {
		t.Errorf("Expected 'new day', got %q", got.snapshot())
	}
}

func TestFileSource_ResumesAfterReconnect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MMDVM-2024-04-04.log")
	if err := os.WriteFile(path, []byte("old line M0OLD RF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := &FileSource{Path: path}

	var first lineCollector
	ctx, cancel := context.WithCancel(context.Background())
	connected := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- src.Stream(ctx, func() { close(connected) }, first.add)
	}()
	<-connected
	appendTo(t, path, "2024-04-04 12:00:01.123 M0ABC RF\n")
	waitFor(t, func() bool { return len(first.snapshot()) == 1 })
	cancel()
	<-done

	// Written while disconnected
	appendTo(t, path, "2024-04-04 12:00:05.000 G4KLX network\n")

	var second lineCollector
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	go func() { _ = src.Stream(ctx2, nil, second.add) }()

	waitFor(t, func() bool { return len(second.snapshot()) == 1 })
	if got := second.snapshot()[0]; got != "2024-04-04 12:00:05.000 G4KLX network" {
		t.Errorf("Expected the line written while disconnected, got %q", got)
	}
}

func TestFileSource_FileAppearsAfterFailedAttempt(t *testing.T) {
	dir := t.TempDir()
	src := &FileSource{Dir: dir, Prefix: "MMDVM"}

	if err := src.Stream(context.Background(), nil, func(string) {}); err == nil {
		t.Fatal("Expected error with no log file")
	}

	// Today's file is created between attempts
	if err := os.WriteFile(filepath.Join(dir, "MMDVM-2024-04-04.log"), []byte("first of the day\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got lineCollector
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Stream(ctx, nil, got.add) }()

	waitFor(t, func() bool { return len(got.snapshot()) == 1 })
	if got.snapshot()[0] != "first of the day" {
		t.Errorf("Expected the new file from its start, got %q", got.snapshot())
	}
}

// fakeSource fails a number of times before streaming lines
type fakeSource struct {
	failures int32
	lines    []string
	attempts int32
}

func (f *fakeSource) Target() string { return "fake" }

func (f *fakeSource) Stream(ctx context.Context, onConnect func(), handle LineHandler) error {
	n := atomic.AddInt32(&f.attempts, 1)
	if n <= atomic.LoadInt32(&f.failures) {
		return errors.New("connection refused")
	}
	onConnect()
	for _, l := range f.lines {
		handle(l)
	}
	<-ctx.Done()
	return nil
}

func TestRunner_ReconnectsAndDelivers(t *testing.T) {
	store := state.NewStore()
	src := &fakeSource{failures: 2, lines: []string{"Linked to REFLECTOR1"}}

	var got lineCollector
	var errorsSeen, connects int32
	r := &Runner{
		Stream: prtcall.StreamSecondary,
		Source: src,
		Handler: func(stream prtcall.Stream, line string) prtcall.Result {
			if stream != prtcall.StreamSecondary {
				t.Errorf("Unexpected stream %v", stream)
			}
			got.add(line)
			return prtcall.Result{}
		},
		Status: store,
		Publish: func(e events.Event) {
			switch e.Type {
			case events.StreamError:
				atomic.AddInt32(&errorsSeen, 1)
			case events.StreamConnected:
				atomic.AddInt32(&connects, 1)
			}
		},
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return len(got.snapshot()) == 1 })

	streams := store.GetStreams()
	if len(streams) != 1 || streams[0].Status != state.StatusConnected {
		t.Errorf("Expected connected stream, got %+v", streams)
	}

	cancel()
	<-done

	if atomic.LoadInt32(&errorsSeen) != 2 {
		t.Errorf("Expected 2 stream errors, got %d", atomic.LoadInt32(&errorsSeen))
	}
	if atomic.LoadInt32(&connects) != 1 {
		t.Errorf("Expected 1 connect, got %d", atomic.LoadInt32(&connects))
	}
	if store.GetStreams()[0].Status != state.StatusStopped {
		t.Errorf("Expected stopped status after cancel, got %v", store.GetStreams()[0].Status)
	}
}

func TestRunner_Backoff(t *testing.T) {
	r := &Runner{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := r.nextBackoff(); got != w {
			t.Errorf("Backoff %d = %v, want %v", i, got, w)
		}
	}

	r.resetBackoff()
	if got := r.nextBackoff(); got != time.Second {
		t.Errorf("Expected reset backoff of 1s, got %v", got)
	}

	d := &Runner{}
	if got := d.nextBackoff(); got != initialReconnectBackoff {
		t.Errorf("Expected default initial backoff, got %v", got)
	}
}
