// Package prthistory provides the session-lived history of displayed calls.
package prthistory

import (
	"sync"
	"time"

	"github.com/txn2/parrot/pkg/prtcall"
)

// Row is one displayed call
type Row struct {
	ID          int64          `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Source      prtcall.Source `json:"source"`
	Callsign    string         `json:"callsign"`
	DisplayedAt time.Time      `json:"displayedAt"`
}

// TimestampText returns the call timestamp in display form
func (r Row) TimestampText() string {
	return r.Timestamp.UTC().Format(prtcall.TimestampLayout)
}

// Config configures the history store
type Config struct {
	// MaxRows caps retained rows. Zero keeps every row for the session.
	MaxRows int
}

// Maximum allocation for a single read
const maxReadLimit = 100000

// Store is an append-only, insertion ordered row collection.
// When MaxRows is set the oldest rows are evicted first.
type Store struct {
	mu      sync.RWMutex
	rows    []Row
	nextID  int64
	maxRows int
	now     func() time.Time
}

// NewStore creates a new history store
func NewStore(cfg Config) *Store {
	if cfg.MaxRows < 0 {
		cfg.MaxRows = 0
	}
	return &Store{
		rows:    make([]Row, 0, 64),
		nextID:  1,
		maxRows: cfg.MaxRows,
		now:     time.Now,
	}
}

// Append records a displayed call and returns the stored row
func (s *Store) Append(ev prtcall.CallEvent) Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := Row{
		ID:          s.nextID,
		Timestamp:   ev.Timestamp,
		Source:      ev.Source,
		Callsign:    ev.Callsign,
		DisplayedAt: s.now(),
	}
	s.nextID++

	s.rows = append(s.rows, row)
	if s.maxRows > 0 && len(s.rows) > s.maxRows {
		drop := len(s.rows) - s.maxRows
		n := copy(s.rows, s.rows[drop:])
		s.rows = s.rows[:n]
	}

	return row
}

// Rows returns all rows in display order, oldest first
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Row, len(s.rows))
	copy(result, s.rows)
	return result
}

// Recent returns up to count rows, newest first
func (s *Store) Recent(count int) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || len(s.rows) == 0 {
		return nil
	}
	if count > len(s.rows) {
		count = len(s.rows)
	}
	if count > maxReadLimit {
		count = maxReadLimit
	}

	result := make([]Row, 0, count)
	for i := len(s.rows) - 1; i >= 0 && len(result) < count; i-- {
		result = append(result, s.rows[i])
	}
	return result
}

// Last returns the most recently appended row
func (s *Store) Last() (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rows) == 0 {
		return Row{}, false
	}
	return s.rows[len(s.rows)-1], true
}

// Len returns the number of retained rows
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Stats provides statistics about stored history
type Stats struct {
	Rows    int   `json:"rows"`
	MaxRows int   `json:"maxRows"`
	NextID  int64 `json:"nextId"`
}

// GetStats returns statistics about stored history
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Rows:    len(s.rows),
		MaxRows: s.maxRows,
		NextID:  s.nextID,
	}
}

// Clear removes all rows and returns the number removed. IDs keep
// increasing across clears.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.rows)
	s.rows = make([]Row, 0, 64)
	return n
}
