// Package history keeps the rolling log of snippets saved into registers.
package history

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/petems/keyregisters/internal/jsonfile"
	"github.com/rs/zerolog"
)

// DefaultCapacity is the number of entries kept when no limit is configured.
const DefaultCapacity = 1000

// Entry is an immutable history record.
type Entry struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Log is a bounded, newest-first, write-through history.
type Log struct {
	mu       sync.RWMutex
	path     string
	capacity int
	entries  []Entry
	now      func() time.Time
	log      zerolog.Logger

	// saveMu orders snapshot+write so an older snapshot never lands last
	saveMu sync.Mutex
}

// New creates an empty log persisted at path. Capacity <= 0 uses DefaultCapacity.
func New(path string, capacity int, log zerolog.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		path:     path,
		capacity: capacity,
		now:      time.Now,
		log:      log.With().Str("component", "history").Logger(),
	}
}

// Add prepends text unless it is empty or equals the newest entry.
func (l *Log) Add(text string) (Entry, bool) {
	if text == "" {
		return Entry{}, false
	}

	l.mu.Lock()
	if len(l.entries) > 0 && l.entries[0].Text == text {
		l.mu.Unlock()
		return Entry{}, false
	}

	e := Entry{ID: uuid.New(), Text: text, Date: l.now()}
	l.entries = append([]Entry{e}, l.entries...)
	l.trimLocked()
	l.mu.Unlock()

	l.persist()
	return e, true
}

// Remove deletes the entry with id. Unknown ids are ignored.
func (l *Log) Remove(id uuid.UUID) {
	l.mu.Lock()
	idx := -1
	for i, e := range l.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return
	}
	l.entries = append(l.entries[:idx:idx], l.entries[idx+1:]...)
	l.mu.Unlock()

	l.persist()
}

// ClearAll drops every entry.
func (l *Log) ClearAll() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	l.persist()
}

// Get returns the entry with id.
func (l *Log) Get(id uuid.UUID) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Search returns entries containing query, ignoring case, newest first.
func (l *Log) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return l.Entries()
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Entry
	for _, e := range l.entries {
		if strings.Contains(strings.ToLower(e.Text), q) {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// SetCapacity changes the bound, evicting the oldest entries if needed.
func (l *Log) SetCapacity(n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	l.capacity = n
	trimmed := l.trimLocked()
	l.mu.Unlock()

	if trimmed {
		l.persist()
	}
}

// trimLocked evicts from the tail past capacity; l.mu must be held.
func (l *Log) trimLocked() bool {
	if len(l.entries) <= l.capacity {
		return false
	}
	l.entries = l.entries[:l.capacity:l.capacity]
	return true
}

// Load replaces the log with the persisted document. Undecodable data is
// treated as no data.
func (l *Log) Load() error {
	var doc []Entry
	if err := jsonfile.Read(l.path, &doc); err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	l.mu.Lock()
	l.entries = doc
	l.trimLocked()
	l.mu.Unlock()
	return nil
}

// Save writes the history document.
func (l *Log) Save() error {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	doc := l.Entries()
	if doc == nil {
		doc = []Entry{}
	}
	if err := jsonfile.Write(l.path, doc); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (l *Log) persist() {
	if err := l.Save(); err != nil {
		l.log.Warn().Err(err).Msg("Failed to persist history")
	}
}
