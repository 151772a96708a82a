package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/txn2/parrot/pkg/prtcall"
)

func testCall(callsign string) prtcall.CallEvent {
	return prtcall.CallEvent{
		Timestamp: time.Date(2024, 4, 4, 12, 0, 1, 123000000, time.UTC),
		Source:    prtcall.SourceRF,
		Callsign:  callsign,
	}
}

func TestNewStore(t *testing.T) {
	store := NewStore()

	if store == nil {
		t.Fatal("Expected non-nil store")
	}

	d := store.GetDisplay()
	if d.HasCall {
		t.Error("Expected no call on new store")
	}
	if d.Glyph != "○" {
		t.Errorf("Expected empty glyph, got %q", d.Glyph)
	}
	if len(store.GetStreams()) != 0 {
		t.Error("Expected no streams on new store")
	}
}

func TestSetCall(t *testing.T) {
	store := NewStore()
	store.SetCall(testCall("M0ABC"))

	d := store.GetDisplay()
	if !d.HasCall || d.Call.Callsign != "M0ABC" {
		t.Errorf("Expected M0ABC displayed, got %+v", d)
	}
	if d.TimestampText() != "2024-04-04 12:00:01.123" {
		t.Errorf("Unexpected timestamp text %q", d.TimestampText())
	}
	if d.SourceText() != "RF" {
		t.Errorf("Unexpected source text %q", d.SourceText())
	}
	if store.GetSummary().Displayed != 1 {
		t.Errorf("Expected 1 displayed, got %d", store.GetSummary().Displayed)
	}
}

func TestDisplayText_NoCall(t *testing.T) {
	var d DisplaySnapshot
	if d.TimestampText() != "" || d.SourceText() != "" {
		t.Error("Expected empty text without a call")
	}
}

func TestSetIndicatorAndRoom(t *testing.T) {
	store := NewStore()
	store.SetIndicator(true, "●")
	store.SetRoom("FCS00390")

	d := store.GetDisplay()
	if !d.Blinking || d.Glyph != "●" {
		t.Errorf("Unexpected indicator state %+v", d)
	}
	if d.Room != "FCS00390" {
		t.Errorf("Expected room FCS00390, got %q", d.Room)
	}

	store.SetRoom("")
	if store.GetDisplay().Room != "" {
		t.Error("Expected room cleared")
	}
}

func TestStreams(t *testing.T) {
	store := NewStore()
	store.SetStreamStatus("secondary", "http://repeater:8000/watch_log?log_override=YSFGateway", StatusConnecting, "")
	store.SetStreamStatus("primary", "http://repeater:8000/watch_log", StatusConnected, "")
	store.MarkLine("primary")
	store.MarkLine("primary")
	store.SetStreamStatus("secondary", "", StatusError, "connection refused")

	streams := store.GetStreams()
	if len(streams) != 2 {
		t.Fatalf("Expected 2 streams, got %d", len(streams))
	}
	if streams[0].Name != "primary" || streams[0].Lines != 2 {
		t.Errorf("Unexpected primary stream %+v", streams[0])
	}
	if streams[1].Status != StatusError || streams[1].Error != "connection refused" {
		t.Errorf("Unexpected secondary stream %+v", streams[1])
	}
	if streams[1].Target == "" {
		t.Error("Expected target to be kept when updated with empty target")
	}

	sum := store.GetSummary()
	if sum.Streams != 2 || sum.Connected != 1 {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

func TestCounters(t *testing.T) {
	store := NewStore()
	store.IncReceived()
	store.IncReceived()
	store.IncSuppressed()

	sum := store.GetSummary()
	if sum.Received != 2 || sum.Suppressed != 1 {
		t.Errorf("Unexpected counters %+v", sum)
	}
}

func TestStreamStatus_String(t *testing.T) {
	tests := []struct {
		status   StreamStatus
		expected string
	}{
		{StatusPending, "Pending"},
		{StatusConnecting, "Connecting"},
		{StatusConnected, "Connected"},
		{StatusError, "Error"},
		{StatusStopped, "Stopped"},
		{StreamStatus(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.SetCall(testCall(fmt.Sprintf("M%dABC", n)))
				store.SetIndicator(j%2 == 0, "●")
				store.MarkLine("primary")
				_ = store.GetDisplay()
				_ = store.GetSummary()
				_ = store.GetStreams()
			}
		}(i)
	}
	wg.Wait()

	if store.GetSummary().Displayed != 1000 {
		t.Errorf("Expected 1000 displayed, got %d", store.GetSummary().Displayed)
	}
}
