/*
Copyright 2018-2024 Craig Johnston <cjimti@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package state

import (
	"sort"
	"sync"
	"time"

	"github.com/txn2/parrot/pkg/prtcall"
)

// Store maintains the visible monitor state for TUI and API rendering
type Store struct {
	mu      sync.RWMutex
	display DisplaySnapshot
	streams map[string]*StreamSnapshot

	// Pipeline counters
	received   uint64
	displayed  uint64
	suppressed uint64
}

// NewStore creates a new state store
func NewStore() *Store {
	return &Store{
		display: DisplaySnapshot{Glyph: "○"},
		streams: make(map[string]*StreamSnapshot),
	}
}

// SetCall replaces the displayed call fields
func (s *Store) SetCall(call prtcall.CallEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display.HasCall = true
	s.display.Call = call
	s.display.UpdatedAt = time.Now()
	s.displayed++
}

// SetIndicator updates the activity indicator
func (s *Store) SetIndicator(blinking bool, glyph string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display.Blinking = blinking
	s.display.Glyph = glyph
	s.display.UpdatedAt = time.Now()
}

// SetRoom sets the linked room; empty clears it
func (s *Store) SetRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display.Room = room
	s.display.UpdatedAt = time.Now()
}

// GetDisplay returns a copy of the visible display
func (s *Store) GetDisplay() DisplaySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}

// IncReceived counts a classified call event
func (s *Store) IncReceived() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received++
}

// IncSuppressed counts a call event discarded by dedup
func (s *Store) IncSuppressed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressed++
}

// SetStreamStatus records the status of a named stream
func (s *Store) SetStreamStatus(name, target string, status StreamStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[name]
	if !ok {
		st = &StreamSnapshot{Name: name}
		s.streams[name] = st
	}
	if target != "" {
		st.Target = target
	}
	st.Status = status
	st.Error = errMsg
	st.UpdatedAt = time.Now()
}

// MarkLine counts a line read from the named stream
func (s *Store) MarkLine(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[name]
	if !ok {
		st = &StreamSnapshot{Name: name, Status: StatusConnected}
		s.streams[name] = st
	}
	st.Lines++
	st.LastLine = time.Now()
}

// GetStreams returns all streams sorted by name
func (s *Store) GetStreams() []StreamSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]StreamSnapshot, 0, len(s.streams))
	for _, st := range s.streams {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// GetSummary returns overall statistics
func (s *Store) GetSummary() SummaryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := SummaryStats{
		Received:    s.received,
		Displayed:   s.displayed,
		Suppressed:  s.suppressed,
		Streams:     len(s.streams),
		LastUpdated: time.Now(),
	}
	for _, st := range s.streams {
		if st.Status == StatusConnected {
			stats.Connected++
		}
	}
	return stats
}
