package requestlog

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultCapacity is the Memory size used when none is given.
const DefaultCapacity = 1000

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for call history storage.
// Store embeds Logger, so any Store implementation can be used where Logger is expected.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields match everything.
type Filter struct {
	// Outcome filters by outcome.
	Outcome string

	// Rule filters by rule name.
	Rule string

	// Method filters by method, ignoring case.
	Method string

	// Path filters by path prefix.
	Path string

	// Matched filters by whether a rule matched.
	Matched *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

func (f *Filter) matches(e *Entry) bool {
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.Rule != "" && e.Rule != f.Rule {
		return false
	}
	if f.Method != "" && !strings.EqualFold(e.Method, f.Method) {
		return false
	}
	if f.Path != "" && !strings.HasPrefix(e.Path, f.Path) {
		return false
	}
	if f.Matched != nil && e.Matched != *f.Matched {
		return false
	}
	return true
}

// Memory is a Store backed by an in-memory circular buffer. The oldest entry
// is evicted once capacity is reached.
type Memory struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
	nextID     int64
}

var _ Store = (*Memory)(nil)

// NewMemory creates a Memory holding at most maxEntries entries.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultCapacity
	}
	return &Memory{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Log records an entry, filling in a missing ID or timestamp.
func (m *Memory) Log(entry *Entry) {
	if entry == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		m.nextID++
		entry.ID = "call-" + strconv.FormatInt(m.nextID, 36)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if len(m.entries) >= m.maxEntries {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, entry)
}

// Get retrieves an entry by ID, or nil.
func (m *Memory) Get(id string) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// List returns entries newest first.
func (m *Memory) List(filter *Filter) []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Entry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if filter != nil && !filter.matches(m.entries[i]) {
			continue
		}
		result = append(result, m.entries[i])
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]*Entry, 0, m.maxEntries)
}

// Count returns the number of entries.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
