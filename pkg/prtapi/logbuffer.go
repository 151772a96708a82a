package prtapi

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

// Upper bound for a single buffer allocation
const maxLogBufferSize = 10000

// DefaultLogBufferSize is the number of entries kept for GET /api/v1/logs
const DefaultLogBufferSize = 1000

// LogBuffer is a ring buffer of log entries. It implements types.LogBufferProvider.
type LogBuffer struct {
	entries []types.LogBufferEntry
	size    int
	head    int
	count   int
	mu      sync.RWMutex
}

// NewLogBuffer creates a new log buffer holding up to size entries
func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = DefaultLogBufferSize
	}
	if size > maxLogBufferSize {
		size = maxLogBufferSize
	}
	return &LogBuffer{
		entries: make([]types.LogBufferEntry, size),
		size:    size,
	}
}

// Add adds a log entry to the buffer, overwriting the oldest when full
func (b *LogBuffer) Add(entry types.LogBufferEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % b.size
	if b.count < b.size {
		b.count++
	}
}

// GetLast returns the last n entries (most recent first)
func (b *LogBuffer) GetLast(n int) []types.LogBufferEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]types.LogBufferEntry, n)
	for i := 0; i < n; i++ {
		idx := (b.head - 1 - i + b.size) % b.size
		result[i] = b.entries[idx]
	}
	return result
}

// Count returns the number of entries in the buffer
func (b *LogBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Clear clears all entries from the buffer
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
}

var _ types.LogBufferProvider = (*LogBuffer)(nil)

// LogBufferHook is a logrus hook that writes to a LogBuffer
type LogBufferHook struct {
	buffer *LogBuffer
	levels []log.Level
}

// NewLogBufferHook creates a new LogBufferHook. Nil levels means all levels.
func NewLogBufferHook(buffer *LogBuffer, levels []log.Level) *LogBufferHook {
	if levels == nil {
		levels = log.AllLevels
	}
	return &LogBufferHook{
		buffer: buffer,
		levels: levels,
	}
}

// Levels returns the log levels this hook handles
func (h *LogBufferHook) Levels() []log.Level {
	return h.levels
}

// Fire is called when a log entry is made
func (h *LogBufferHook) Fire(entry *log.Entry) error {
	var fields map[string]string
	if len(entry.Data) > 0 {
		fields = make(map[string]string, len(entry.Data))
		for k, v := range entry.Data {
			if s, ok := v.(string); ok {
				fields[k] = s
			} else {
				fields[k] = fmt.Sprint(v)
			}
		}
	}

	h.buffer.Add(types.LogBufferEntry{
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Message:   entry.Message,
		Fields:    fields,
	})
	return nil
}
