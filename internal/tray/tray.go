package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/petems/keyregisters/internal/app"
	"github.com/petems/keyregisters/internal/history"
	"github.com/petems/keyregisters/internal/logging"
	"github.com/petems/keyregisters/internal/registers"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

const (
	statusTitle = "⌘#"

	// systray cannot remove items, so history rows are preallocated
	historySlots = 10

	previewLen = 40
)

type registerRow struct {
	item   *systray.MenuItem
	clear  *systray.MenuItem
	moveUp *systray.MenuItem
}

type historyRow struct {
	item   *systray.MenuItem
	save   [registers.Count]*systray.MenuItem
	remove *systray.MenuItem
}

// Poster runs functions on the event loop, which owns the stores.
type Poster interface {
	Post(fn func()) bool
}

type UI struct {
	app      *app.App
	settings *settings.Store
	loop     Poster
	version  string
	commit   string
	log      zerolog.Logger

	mu          sync.Mutex
	ready       bool
	regRows     [registers.Count]registerRow
	histRows    [historySlots]historyRow
	histEntries [historySlots]history.Entry
	mHistory    *systray.MenuItem
	mShortcut   *systray.MenuItem
}

func New(application *app.App, s *settings.Store, events Poster, version, commit string, log zerolog.Logger) *UI {
	u := &UI{
		app:      application,
		settings: s,
		loop:     events,
		version:  version,
		commit:   commit,
		log:      log.With().Str("component", "tray").Logger(),
	}
	s.OnChange(u.shortcutsChanged)
	return u
}

// Run blocks until Quit is chosen or ctx is cancelled. onReady runs once
// the menu exists.
func (u *UI) Run(ctx context.Context, onReady func()) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(func() {
		u.onReady()
		if onReady != nil {
			onReady()
		}
	}, u.onExit)
	return nil
}

func (u *UI) onReady() {
	systray.SetTitle(statusTitle)
	systray.SetTooltip("Keyboard registers")

	u.mu.Lock()
	for i := range u.regRows {
		n := i + 1
		row := registerRow{item: systray.AddMenuItem(registerTitle(n, ""), "")}
		row.clear = row.item.AddSubMenuItem("Clear", fmt.Sprintf("Empty register %d", n))
		if n > 1 {
			row.moveUp = row.item.AddSubMenuItem("Move Up", fmt.Sprintf("Swap with register %d", n-1))
		}
		u.regRows[i] = row
		go u.handleRegister(n, row)
	}
	mClearAll := systray.AddMenuItem("Clear All Registers", "Empty every register")
	systray.AddSeparator()

	u.mHistory = systray.AddMenuItem("History", "Recently saved snippets")
	for i := range u.histRows {
		row := historyRow{item: u.mHistory.AddSubMenuItem("", "")}
		for n := 1; n <= registers.Count; n++ {
			row.save[n-1] = row.item.AddSubMenuItem(fmt.Sprintf("Save to reg %d", n), "")
		}
		row.remove = row.item.AddSubMenuItem("Remove", "Delete from history")
		row.item.Hide()
		u.histRows[i] = row
		go u.handleHistory(i, row)
	}
	mClearHistory := u.mHistory.AddSubMenuItem("Clear History", "Delete every entry")
	systray.AddSeparator()

	u.mShortcut = systray.AddMenuItem(shortcutTitle(u.settings.PasteModifiers(), u.settings.SaveModifiers()), "")
	u.mShortcut.Disable()
	mReset := systray.AddMenuItem("Reset Shortcuts", "Restore default modifiers")
	systray.AddSeparator()

	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About Key Registers")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	u.ready = true
	u.mu.Unlock()

	u.RegistersChanged()
	u.HistoryChanged()

	go u.handleEvents(mClearAll, mClearHistory, mReset, mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mClearAll, mClearHistory, mReset, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-mClearAll.ClickedCh:
			u.post(u.app.OnClearAll)
		case <-mClearHistory.ClickedCh:
			u.post(u.app.ClearHistory)
		case <-mReset.ClickedCh:
			u.post(u.app.ResetShortcuts)
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) handleRegister(n int, row registerRow) {
	var moveUp chan struct{}
	if row.moveUp != nil {
		moveUp = row.moveUp.ClickedCh
	}
	for {
		select {
		case <-row.clear.ClickedCh:
			u.post(func() {
				if err := u.app.ClearRegister(n); err != nil {
					u.log.Error().Err(err).Int("register", n).Msg("Failed to clear register")
				}
			})
		case <-moveUp:
			u.post(func() {
				if err := u.app.Reorder(swapOrder(n)); err != nil {
					u.log.Error().Err(err).Int("register", n).Msg("Failed to move register")
				}
			})
		}
	}
}

func (u *UI) handleHistory(i int, row historyRow) {
	saves := make(chan int)
	for n, item := range row.save {
		go func(n int, item *systray.MenuItem) {
			for range item.ClickedCh {
				saves <- n
			}
		}(n+1, item)
	}

	for {
		select {
		case n := <-saves:
			e, ok := u.entryAt(i)
			if !ok {
				continue
			}
			u.post(func() {
				if err := u.app.SaveHistoryToRegister(e.ID, n); err != nil {
					u.log.Error().Err(err).Int("register", n).Msg("Failed to save history entry")
				}
			})
		case <-row.remove.ClickedCh:
			if e, ok := u.entryAt(i); ok {
				u.post(func() { u.app.RemoveHistory(e.ID) })
			}
		}
	}
}

// post hands a menu action to the event loop.
func (u *UI) post(fn func()) {
	if !u.loop.Post(fn) {
		u.log.Debug().Msg("Event loop stopped, dropping menu action")
	}
}

func (u *UI) entryAt(i int) (history.Entry, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	e := u.histEntries[i]
	return e, e.Text != ""
}

// RegistersChanged refreshes the register rows.
func (u *UI) RegistersChanged() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.ready {
		return
	}
	for i, text := range u.app.Registers() {
		u.regRows[i].item.SetTitle(registerTitle(i+1, text))
		u.regRows[i].item.SetTooltip(text)
	}
}

// HistoryChanged refreshes the newest history rows.
func (u *UI) HistoryChanged() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.ready {
		return
	}
	entries := u.app.History()
	u.mHistory.SetTitle(historyMenuTitle(len(entries)))
	for i := range u.histRows {
		row := u.histRows[i]
		if i >= len(entries) {
			u.histEntries[i] = history.Entry{}
			row.item.Hide()
			continue
		}
		u.histEntries[i] = entries[i]
		row.item.SetTitle(historyTitle(entries[i], time.Now()))
		row.item.SetTooltip(entries[i].Text)
		row.item.Show()
	}
}

func (u *UI) shortcutsChanged() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.ready {
		return
	}
	u.mShortcut.SetTitle(shortcutTitle(u.settings.PasteModifiers(), u.settings.SaveModifiers()))
}

func (u *UI) openLogs() {
	// TODO: open the file with open/xdg-open/start instead of logging its path
	u.log.Info().Str("path", logging.LogPath()).Msg("Log file")
}

func (u *UI) showAbout() {
	u.log.Info().Str("version", u.version).Str("commit", u.commit).Msg("Key Registers")
}

func (u *UI) onExit() {
	u.log.Debug().Msg("Tray exited")
}

func registerTitle(n int, text string) string {
	return fmt.Sprintf("%d: %s", n, registers.Preview(text, previewLen))
}

func historyTitle(e history.Entry, now time.Time) string {
	return fmt.Sprintf("%s  (%s)", registers.Preview(e.Text, previewLen), age(now.Sub(e.Date)))
}

func historyMenuTitle(n int) string {
	if n == 0 {
		return "History (empty)"
	}
	return fmt.Sprintf("History (%d)", n)
}

func shortcutTitle(paste, save settings.Modifiers) string {
	return fmt.Sprintf("Paste: %s+N   Save: %s+N", paste, save)
}

// age renders d coarsely, e.g. "now", "5m", "3h", "2d".
func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// swapOrder returns the register order that swaps n with n-1.
func swapOrder(n int) []int {
	order := make([]int, registers.Count)
	for i := range order {
		order[i] = i + 1
	}
	if n > 1 && n <= registers.Count {
		order[n-2], order[n-1] = order[n-1], order[n-2]
	}
	return order
}
