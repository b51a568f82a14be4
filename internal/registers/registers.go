// Package registers holds the nine numbered text slots.
package registers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/petems/keyregisters/internal/jsonfile"
	"github.com/rs/zerolog"
)

const (
	// Count is the number of addressable registers (1..Count).
	Count = 9

	// slot 0 is reserved and kept so the document stays index-aligned
	docLen = Count + 1
)

// ErrInvalidOrder is returned by Reorder for anything but a permutation of 1..9.
var ErrInvalidOrder = errors.New("order must be a permutation of registers 1-9")

// Store is a write-through register store backed by a JSON document.
type Store struct {
	mu    sync.RWMutex
	path  string
	slots [docLen]string
	log   zerolog.Logger

	// saveMu orders snapshot+write so an older snapshot never lands last
	saveMu sync.Mutex
}

// New creates an empty store persisted at path. Call Load to read it.
func New(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("component", "registers").Logger(),
	}
}

// Valid reports whether n addresses a register.
func Valid(n int) bool {
	return n >= 1 && n <= Count
}

// Get returns the content of register n, or "" for unknown registers.
func (s *Store) Get(n int) string {
	if !Valid(n) {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[n]
}

// Set stores text in register n and persists. Unknown registers are ignored.
func (s *Store) Set(n int, text string) {
	if !Valid(n) {
		return
	}
	s.mu.Lock()
	s.slots[n] = text
	s.mu.Unlock()
	s.persist()
}

// Clear empties register n.
func (s *Store) Clear(n int) {
	s.Set(n, "")
}

// ClearAll empties every register.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.slots = [docLen]string{}
	s.mu.Unlock()
	s.persist()
}

// Reorder rearranges registers so that register i+1 receives the previous
// content of register order[i].
func (s *Store) Reorder(order []int) error {
	if len(order) != Count {
		return ErrInvalidOrder
	}
	seen := make(map[int]bool, Count)
	for _, n := range order {
		if !Valid(n) || seen[n] {
			return ErrInvalidOrder
		}
		seen[n] = true
	}

	s.mu.Lock()
	prev := s.slots
	for i, n := range order {
		s.slots[i+1] = prev[n]
	}
	s.mu.Unlock()
	s.persist()
	return nil
}

// Snapshot returns registers 1..9 in order.
func (s *Store) Snapshot() [Count]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [Count]string
	copy(out[:], s.slots[1:])
	return out
}

// Search returns the registers whose content contains query, ignoring case.
// An empty query matches every register.
func (s *Store) Search(query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []int
	for n := 1; n <= Count; n++ {
		if q == "" || strings.Contains(strings.ToLower(s.slots[n]), q) {
			matches = append(matches, n)
		}
	}
	return matches
}

// Load replaces the in-memory registers with the persisted document.
// Missing or malformed documents leave the current contents untouched.
func (s *Store) Load() error {
	var doc []string
	if err := jsonfile.Read(s.path, &doc); err != nil {
		return fmt.Errorf("load registers: %w", err)
	}
	if len(doc) != docLen {
		return fmt.Errorf("load registers: expected %d slots, got %d", docLen, len(doc))
	}

	s.mu.Lock()
	copy(s.slots[:], doc)
	s.mu.Unlock()
	return nil
}

// Save writes the registers document.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	doc := append([]string(nil), s.slots[:]...)
	s.mu.RUnlock()

	if err := jsonfile.Write(s.path, doc); err != nil {
		return fmt.Errorf("save registers: %w", err)
	}
	return nil
}

// persist saves and drops failures: the in-memory state stays authoritative.
func (s *Store) persist() {
	if err := s.Save(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist registers")
	}
}

// Preview renders text on a single line, at most max runes long.
func Preview(text string, max int) string {
	if text == "" {
		return "(empty)"
	}
	single := strings.ReplaceAll(text, "\n", " ⏎ ")
	runes := []rune(single)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return single
}
