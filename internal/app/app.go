package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/petems/keyregisters/internal/clipboard"
	"github.com/petems/keyregisters/internal/history"
	"github.com/petems/keyregisters/internal/registers"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidRegister = errors.New("register must be between 1 and 9")
	ErrUnknownEntry    = errors.New("history entry not found")
)

// Clipboard runs clipboard transactions.
type Clipboard interface {
	Paste(text string) error
	Capture(done clipboard.CaptureFunc) error
}

// UI is told when stored data changes (e.g., to rebuild the tray menu)
type UI interface {
	RegistersChanged()
	HistoryChanged()
}

// Messenger displays transient messages.
type Messenger interface {
	ShowMessage(text string)
}

type Config struct {
	Clipboard Clipboard
	Registers *registers.Store
	History   *history.Log
	Settings  *settings.Store
	Messenger Messenger
	Logger    zerolog.Logger
	UI        UI // Optional - can be set later with SetUI
}

// App implements the register actions triggered by shortcuts and by the tray.
type App struct {
	clip     Clipboard
	regs     *registers.Store
	hist     *history.Log
	settings *settings.Store
	msg      Messenger
	log      zerolog.Logger

	mu sync.RWMutex
	ui UI
}

func New(cfg Config) *App {
	return &App{
		clip:     cfg.Clipboard,
		regs:     cfg.Registers,
		hist:     cfg.History,
		settings: cfg.Settings,
		msg:      cfg.Messenger,
		log:      cfg.Logger,
		ui:       cfg.UI,
	}
}

func (a *App) SetUI(ui UI) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ui = ui
}

// Ready announces that shortcuts are installed.
func (a *App) Ready() {
	a.show("Ready")
}

// Shortcut actions

// OnPaste pastes register n into the focused application.
func (a *App) OnPaste(n int) {
	if !registers.Valid(n) {
		return
	}
	text := a.regs.Get(n)
	if text == "" {
		a.log.Debug().Int("register", n).Msg("Register empty, nothing to paste")
		return
	}
	if err := a.clip.Paste(text); err != nil {
		a.log.Warn().Err(err).Int("register", n).Msg("Paste dropped")
		return
	}
	a.log.Info().Int("register", n).Int("length", len(text)).Msg("Pasted register")
	a.show(fmt.Sprintf("Pasted → reg %d", n))
}

// OnSave copies the current selection into register n. Without a selection
// the register receives whatever the clipboard already holds.
func (a *App) OnSave(n int) {
	if !registers.Valid(n) {
		return
	}
	err := a.clip.Capture(func(text string, changed bool) {
		a.saved(n, text, changed)
	})
	if err != nil {
		a.log.Warn().Err(err).Int("register", n).Msg("Save dropped")
	}
}

func (a *App) saved(n int, text string, changed bool) {
	if !changed {
		a.show(fmt.Sprintf("No selection; saved clipboard → reg %d", n))
	}

	a.regs.Set(n, text)
	a.notifyRegisters()

	// history only records explicit saves
	if _, added := a.hist.Add(text); added {
		a.notifyHistory()
	}

	a.log.Info().Int("register", n).Bool("selection", changed).Int("length", len(text)).Msg("Saved register")
	a.show(fmt.Sprintf("Saved → reg %d", n))
}

// OnClearAll empties every register.
func (a *App) OnClearAll() {
	a.regs.ClearAll()
	a.notifyRegisters()
	a.log.Info().Msg("Cleared all registers")
	a.show("All registers cleared")
}

// Tray actions

func (a *App) Registers() [registers.Count]string {
	return a.regs.Snapshot()
}

func (a *App) History() []history.Entry {
	return a.hist.Entries()
}

func (a *App) ClearRegister(n int) error {
	if !registers.Valid(n) {
		return ErrInvalidRegister
	}
	a.regs.Clear(n)
	a.notifyRegisters()
	a.show(fmt.Sprintf("Cleared reg %d", n))
	return nil
}

// Reorder moves the content of register order[i] into register i+1.
func (a *App) Reorder(order []int) error {
	if err := a.regs.Reorder(order); err != nil {
		return fmt.Errorf("reorder registers: %w", err)
	}
	a.notifyRegisters()
	a.show("Reordered registers")
	return nil
}

// SaveHistoryToRegister copies a history entry into register n.
func (a *App) SaveHistoryToRegister(id uuid.UUID, n int) error {
	if !registers.Valid(n) {
		return ErrInvalidRegister
	}
	e, ok := a.hist.Get(id)
	if !ok {
		return ErrUnknownEntry
	}
	a.regs.Set(n, e.Text)
	a.notifyRegisters()
	a.show(fmt.Sprintf("Saved history → reg %d", n))
	return nil
}

func (a *App) RemoveHistory(id uuid.UUID) {
	a.hist.Remove(id)
	a.notifyHistory()
}

func (a *App) ClearHistory() {
	a.hist.ClearAll()
	a.notifyHistory()
}

// ResetShortcuts restores the default modifier sets. The dispatcher
// reinstalls through its settings subscription.
func (a *App) ResetShortcuts() {
	a.settings.ResetDefaults()
	a.log.Info().
		Stringer("paste", a.settings.PasteModifiers()).
		Stringer("save", a.settings.SaveModifiers()).
		Msg("Shortcuts reset to defaults")
}

func (a *App) show(text string) {
	if a.msg != nil {
		a.msg.ShowMessage(text)
	}
}

func (a *App) notifyRegisters() {
	a.mu.RLock()
	ui := a.ui
	a.mu.RUnlock()
	if ui != nil {
		ui.RegistersChanged()
	}
}

func (a *App) notifyHistory() {
	a.mu.RLock()
	ui := a.ui
	a.mu.RUnlock()
	if ui != nil {
		ui.HistoryChanged()
	}
}
