// Package dispatch owns the live digit shortcuts and routes presses to the
// paste, save and clear-all actions.
package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/petems/keyregisters/internal/hotkey"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

// Action ids are fixed so that reinstalling yields the same assignment.
const (
	ClearAllID hotkey.ID = 1000
	pasteBase  hotkey.ID = 10
	saveBase   hotkey.ID = 110
)

type Kind int

const (
	KindPaste Kind = iota
	KindSave
	KindClearAll
)

func (k Kind) String() string {
	switch k {
	case KindPaste:
		return "paste"
	case KindSave:
		return "save"
	default:
		return "clear-all"
	}
}

// PasteID returns the action id of "paste register n".
func PasteID(n int) hotkey.ID { return pasteBase + hotkey.ID(n) }

// SaveID returns the action id of "save selection into register n".
func SaveID(n int) hotkey.ID { return saveBase + hotkey.ID(n) }

// Resolve maps an action id back to its kind and register.
func Resolve(id hotkey.ID) (Kind, int, bool) {
	switch {
	case id == ClearAllID:
		return KindClearAll, 0, true
	case id > pasteBase && id <= pasteBase+9:
		return KindPaste, int(id - pasteBase), true
	case id > saveBase && id <= saveBase+9:
		return KindSave, int(id - saveBase), true
	}
	return 0, 0, false
}

// Table derives the binding table from the two modifier sets. A save
// binding identical to its paste binding is left out.
func Table(paste, save settings.Modifiers) []hotkey.Binding {
	table := []hotkey.Binding{{ID: ClearAllID, Digit: 0, Modifiers: paste}}
	for n := 1; n <= 9; n++ {
		table = append(table, hotkey.Binding{ID: PasteID(n), Digit: n, Modifiers: paste})
		if save != paste {
			table = append(table, hotkey.Binding{ID: SaveID(n), Digit: n, Modifiers: save})
		}
	}
	return table
}

// Source is the modifier configuration the dispatcher follows.
type Source interface {
	PasteModifiers() settings.Modifiers
	SaveModifiers() settings.Modifiers
	OnChange(fn func())
}

// Poster runs functions on the event loop.
type Poster interface {
	Post(fn func()) bool
}

// Callbacks are the actions a press can trigger. Digits are 1..9.
type Callbacks struct {
	OnPaste    func(n int)
	OnSave     func(n int)
	OnClearAll func()
}

type Config struct {
	Hotkeys   hotkey.Manager
	Settings  Source
	Loop      Poster
	Callbacks Callbacks
	Logger    zerolog.Logger
}

// Dispatcher keeps the registered shortcuts in line with Settings.
type Dispatcher struct {
	hotkeys  hotkey.Manager
	settings Source
	loop     Poster
	cb       Callbacks
	log      zerolog.Logger

	mu   sync.Mutex
	live map[hotkey.ID]hotkey.Binding
}

// New creates a dispatcher and subscribes it to settings changes. Call
// Install once to register the initial table.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		hotkeys:  cfg.Hotkeys,
		settings: cfg.Settings,
		loop:     cfg.Loop,
		cb:       cfg.Callbacks,
		log:      cfg.Logger.With().Str("component", "dispatch").Logger(),
		live:     make(map[hotkey.ID]hotkey.Binding),
	}
	cfg.Settings.OnChange(d.Install)
	return d
}

// Install unregisters every shortcut and registers the table for the
// current settings. Refused bindings are logged and skipped.
func (d *Dispatcher) Install() {
	paste := d.settings.PasteModifiers()
	save := d.settings.SaveModifiers()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.uninstallLocked()

	if paste.Empty() || save.Empty() {
		d.log.Warn().Stringer("paste", paste).Stringer("save", save).Msg("Installing shortcuts without modifiers")
	}
	if paste == save {
		d.log.Warn().Stringer("modifiers", paste).Msg("Paste and save modifiers are identical, save shortcuts disabled")
	}

	for _, b := range Table(paste, save) {
		if err := d.hotkeys.Register(b); err != nil {
			d.log.Warn().Err(err).Stringer("binding", b).Msg("Shortcut unavailable")
			continue
		}
		d.live[b.ID] = b
	}

	d.log.Info().
		Int("registered", len(d.live)).
		Stringer("paste", paste).
		Stringer("save", save).
		Msg("Shortcuts installed")
}

// Uninstall releases every live shortcut.
func (d *Dispatcher) Uninstall() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uninstallLocked()
}

func (d *Dispatcher) uninstallLocked() {
	for id, b := range d.live {
		if err := d.hotkeys.Unregister(id); err != nil {
			d.log.Warn().Err(err).Stringer("binding", b).Msg("Failed to unregister shortcut")
		}
		delete(d.live, id)
	}
}

// Bindings returns the live table ordered by action id.
func (d *Dispatcher) Bindings() []hotkey.Binding {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]hotkey.Binding, 0, len(d.live))
	for _, b := range d.live {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run forwards pressed events to the event loop until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-d.hotkeys.Pressed():
			d.loop.Post(func() { d.handle(id) })
		}
	}
}

// handle invokes exactly one callback for a live action id.
func (d *Dispatcher) handle(id hotkey.ID) {
	d.mu.Lock()
	_, live := d.live[id]
	d.mu.Unlock()
	if !live {
		d.log.Debug().Uint32("id", uint32(id)).Msg("Ignoring press for stale shortcut")
		return
	}

	kind, n, ok := Resolve(id)
	if !ok {
		return
	}
	d.log.Debug().Stringer("action", kind).Int("register", n).Msg("Shortcut pressed")

	switch kind {
	case KindPaste:
		if d.cb.OnPaste != nil {
			d.cb.OnPaste(n)
		}
	case KindSave:
		if d.cb.OnSave != nil {
			d.cb.OnSave(n)
		}
	case KindClearAll:
		if d.cb.OnClearAll != nil {
			d.cb.OnClearAll()
		}
	}
}

// Close releases every shortcut and the hotkey manager.
func (d *Dispatcher) Close() error {
	d.Uninstall()
	return d.hotkeys.Close()
}
