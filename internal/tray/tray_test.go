package tray

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/petems/keyregisters/internal/app"
	"github.com/petems/keyregisters/internal/history"
	"github.com/petems/keyregisters/internal/registers"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

func TestRegisterTitle(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		text     string
		expected string
	}{
		{name: "empty", n: 1, text: "", expected: "1: (empty)"},
		{name: "single line", n: 4, text: "hello", expected: "4: hello"},
		{name: "multi line", n: 9, text: "a\nb", expected: "9: a ⏎ b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registerTitle(tt.n, tt.text); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRegisterTitleTruncates(t *testing.T) {
	got := registerTitle(1, strings.Repeat("x", 100))
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long text should be truncated: %q", got)
	}
	if n := len([]rune(got)); n != len("1: ")+previewLen+1 {
		t.Errorf("unexpected title length %d", n)
	}
}

func TestHistoryTitle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := history.Entry{Text: "snippet", Date: now.Add(-90 * time.Minute)}

	if got := historyTitle(e, now); got != "snippet  (1h)" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{10 * time.Second, "now"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		if got := age(tt.d); got != tt.expected {
			t.Errorf("age(%s): expected %q, got %q", tt.d, tt.expected, got)
		}
	}
}

func TestHistoryMenuTitle(t *testing.T) {
	if got := historyMenuTitle(0); got != "History (empty)" {
		t.Errorf("unexpected title %q", got)
	}
	if got := historyMenuTitle(3); got != "History (3)" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestShortcutTitle(t *testing.T) {
	got := shortcutTitle(settings.Cmd|settings.Opt, settings.Ctrl)
	if got != "Paste: opt+cmd+N   Save: ctrl+N" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestSwapOrder(t *testing.T) {
	got := swapOrder(3)
	want := []int{1, 3, 2, 4, 5, 6, 7, 8, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// out of range leaves the identity order
	for i, n := range swapOrder(1) {
		if n != i+1 {
			t.Fatalf("expected identity order, got %v", swapOrder(1))
		}
	}
}

type fakePoster struct {
	posted  []func()
	stopped bool
}

func (p *fakePoster) Post(fn func()) bool {
	if p.stopped {
		return false
	}
	p.posted = append(p.posted, fn)
	return true
}

func newTestUI(t *testing.T, p *fakePoster) (*UI, *registers.Store) {
	t.Helper()
	dir := t.TempDir()
	s := settings.New(filepath.Join(dir, "settings.json"), zerolog.Nop())
	regs := registers.New(filepath.Join(dir, "registers.json"), zerolog.Nop())
	a := app.New(app.Config{
		Registers: regs,
		History:   history.New(filepath.Join(dir, "history.json"), 10, zerolog.Nop()),
		Settings:  s,
		Logger:    zerolog.Nop(),
	})
	return New(a, s, p, "dev", "none", zerolog.Nop()), regs
}

func TestMenuActionsRunOnLoop(t *testing.T) {
	p := &fakePoster{}
	u, regs := newTestUI(t, p)
	regs.Set(2, "keep")

	u.post(u.app.OnClearAll)

	if regs.Get(2) != "keep" {
		t.Fatal("menu action ran on the menu goroutine")
	}
	if len(p.posted) != 1 {
		t.Fatalf("expected 1 posted action, got %d", len(p.posted))
	}
	p.posted[0]()
	if regs.Get(2) != "" {
		t.Error("posted action did not clear the registers")
	}
}

func TestMenuActionDroppedAfterLoopStops(t *testing.T) {
	p := &fakePoster{stopped: true}
	u, regs := newTestUI(t, p)
	regs.Set(1, "keep")

	u.post(u.app.OnClearAll)

	if regs.Get(1) != "keep" {
		t.Error("action should be dropped once the loop stopped")
	}
}

func TestNotificationsBeforeReady(t *testing.T) {
	dir := t.TempDir()
	s := settings.New(filepath.Join(dir, "settings.json"), zerolog.Nop())
	a := app.New(app.Config{
		Registers: registers.New(filepath.Join(dir, "registers.json"), zerolog.Nop()),
		History:   history.New(filepath.Join(dir, "history.json"), 10, zerolog.Nop()),
		Settings:  s,
		Logger:    zerolog.Nop(),
	})
	u := New(a, s, &fakePoster{}, "dev", "none", zerolog.Nop())

	// menu items do not exist until systray calls onReady
	u.RegistersChanged()
	u.HistoryChanged()
	s.SetPasteModifiers(settings.Ctrl)
}
