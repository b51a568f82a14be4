// Package settings stores the paste and save modifier sets.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/petems/keyregisters/internal/jsonfile"
	"github.com/rs/zerolog"
)

// Modifiers is a set of keyboard modifier keys.
type Modifiers uint8

const (
	Cmd Modifiers = 1 << iota
	Opt
	Shift
	Ctrl
)

var (
	DefaultPaste = Cmd | Opt
	DefaultSave  = Cmd | Opt | Shift
)

// Has reports whether every modifier in m is set.
func (s Modifiers) Has(m Modifiers) bool {
	return s&m == m
}

func (s Modifiers) Empty() bool {
	return s == 0
}

func (s Modifiers) String() string {
	if s.Empty() {
		return "none"
	}
	var parts []string
	for _, m := range []struct {
		mod  Modifiers
		name string
	}{{Ctrl, "ctrl"}, {Opt, "opt"}, {Shift, "shift"}, {Cmd, "cmd"}} {
		if s.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(parts, "+")
}

type modsJSON struct {
	Cmd   bool `json:"cmd"`
	Opt   bool `json:"opt"`
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
}

func (s Modifiers) MarshalJSON() ([]byte, error) {
	return json.Marshal(modsJSON{
		Cmd:   s.Has(Cmd),
		Opt:   s.Has(Opt),
		Shift: s.Has(Shift),
		Ctrl:  s.Has(Ctrl),
	})
}

// errIncomplete reports a document missing one of its keys.
var errIncomplete = errors.New("incomplete settings document")

// UnmarshalJSON requires all four flags.
func (s *Modifiers) UnmarshalJSON(data []byte) error {
	var m struct {
		Cmd   *bool `json:"cmd"`
		Opt   *bool `json:"opt"`
		Shift *bool `json:"shift"`
		Ctrl  *bool `json:"ctrl"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m.Cmd == nil || m.Opt == nil || m.Shift == nil || m.Ctrl == nil {
		return fmt.Errorf("modifier set: %w", errIncomplete)
	}
	var out Modifiers
	for _, f := range []struct {
		set bool
		mod Modifiers
	}{{*m.Cmd, Cmd}, {*m.Opt, Opt}, {*m.Shift, Shift}, {*m.Ctrl, Ctrl}} {
		if f.set {
			out |= f.mod
		}
	}
	*s = out
	return nil
}

type document struct {
	PasteMods Modifiers `json:"pasteMods"`
	SaveMods  Modifiers `json:"saveMods"`
}

// storedDocument is the decoding side of document; both sets must be
// present or the file is treated as no data.
type storedDocument struct {
	PasteMods *Modifiers `json:"pasteMods"`
	SaveMods  *Modifiers `json:"saveMods"`
}

// Store holds the modifier configuration. Every setter persists and then
// notifies subscribers before returning.
type Store struct {
	mu        sync.RWMutex
	path      string
	paste     Modifiers
	save      Modifiers
	listeners []func()
	log       zerolog.Logger
	saveMu    sync.Mutex
}

// New loads settings from path, keeping defaults if the document is
// missing or undecodable.
func New(path string, log zerolog.Logger) *Store {
	s := &Store{
		path:  path,
		paste: DefaultPaste,
		save:  DefaultSave,
		log:   log.With().Str("component", "settings").Logger(),
	}

	var doc storedDocument
	if err := jsonfile.Read(path, &doc); err != nil {
		s.log.Debug().Err(err).Msg("Using default settings")
		return s
	}
	if doc.PasteMods == nil || doc.SaveMods == nil {
		s.log.Warn().Err(errIncomplete).Msg("Using default settings")
		return s
	}
	s.paste = *doc.PasteMods
	s.save = *doc.SaveMods
	return s
}

// OnChange subscribes fn to change notifications. fn runs synchronously
// inside the setter and must tolerate duplicate notifications.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) PasteModifiers() Modifiers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paste
}

func (s *Store) SaveModifiers() Modifiers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save
}

func (s *Store) SetPasteModifiers(m Modifiers) {
	s.update(func() { s.paste = m })
}

func (s *Store) SetSaveModifiers(m Modifiers) {
	s.update(func() { s.save = m })
}

// ResetDefaults restores both sets with a single notification.
func (s *Store) ResetDefaults() {
	s.update(func() {
		s.paste = DefaultPaste
		s.save = DefaultSave
	})
}

// EnforceAtLeastOneModifier restores any empty set to its default.
// It is never called implicitly.
func (s *Store) EnforceAtLeastOneModifier() {
	s.mu.RLock()
	ok := !s.paste.Empty() && !s.save.Empty()
	s.mu.RUnlock()
	if ok {
		return
	}

	s.update(func() {
		if s.paste.Empty() {
			s.paste = DefaultPaste
		}
		if s.save.Empty() {
			s.save = DefaultSave
		}
	})
}

func (s *Store) update(mutate func()) {
	s.mu.Lock()
	mutate()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist settings")
	}
	for _, fn := range listeners {
		fn()
	}
}

// persist snapshots under saveMu so concurrent setters persist in order.
func (s *Store) persist() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	doc := document{PasteMods: s.paste, SaveMods: s.save}
	s.mu.RUnlock()

	if err := jsonfile.Write(s.path, doc); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
