package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/petems/keyregisters/internal/hotkey"
	"github.com/petems/keyregisters/internal/loop"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

// fakeManager refuses a combination that is already held, like the OS does.
type fakeManager struct {
	mu      sync.Mutex
	live    map[hotkey.ID]hotkey.Binding
	refuse  map[hotkey.ID]bool
	pressed chan hotkey.ID
	closed  bool
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		live:    make(map[hotkey.ID]hotkey.Binding),
		refuse:  make(map[hotkey.ID]bool),
		pressed: make(chan hotkey.ID, 8),
	}
}

func (m *fakeManager) Register(b hotkey.Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refuse[b.ID] {
		return errors.New("combination taken")
	}
	if _, ok := m.live[b.ID]; ok {
		return fmt.Errorf("id %d already registered", b.ID)
	}
	for _, other := range m.live {
		if other.Digit == b.Digit && other.Modifiers == b.Modifiers {
			return fmt.Errorf("%s already registered", b)
		}
	}
	m.live[b.ID] = b
	return nil
}

func (m *fakeManager) Unregister(id hotkey.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[id]; !ok {
		return fmt.Errorf("id %d not registered", id)
	}
	delete(m.live, id)
	return nil
}

func (m *fakeManager) Pressed() <-chan hotkey.ID { return m.pressed }

func (m *fakeManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *fakeManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *fakeManager) binding(id hotkey.ID) (hotkey.Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.live[id]
	return b, ok
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 8)}
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnPaste:    func(n int) { r.add(fmt.Sprintf("paste %d", n)) },
		OnSave:     func(n int) { r.add(fmt.Sprintf("save %d", n)) },
		OnClearAll: func() { r.add("clear-all") },
	}
}

func newDispatcher(t *testing.T, mgr *fakeManager, cb Callbacks) (*Dispatcher, *settings.Store) {
	t.Helper()
	store := settings.New(filepath.Join(t.TempDir(), "settings.json"), zerolog.Nop())

	l := loop.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	d := New(Config{
		Hotkeys:   mgr,
		Settings:  store,
		Loop:      l,
		Callbacks: cb,
		Logger:    zerolog.Nop(),
	})
	go d.Run(ctx)

	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return d, store
}

func TestResolve(t *testing.T) {
	tests := []struct {
		id   hotkey.ID
		kind Kind
		n    int
		ok   bool
	}{
		{ClearAllID, KindClearAll, 0, true},
		{PasteID(1), KindPaste, 1, true},
		{PasteID(9), KindPaste, 9, true},
		{SaveID(4), KindSave, 4, true},
		{10, 0, 0, false},
		{110, 0, 0, false},
		{999, 0, 0, false},
	}

	for _, tt := range tests {
		kind, n, ok := Resolve(tt.id)
		if ok != tt.ok || (ok && (kind != tt.kind || n != tt.n)) {
			t.Errorf("Resolve(%d) = (%s, %d, %v), want (%s, %d, %v)", tt.id, kind, n, ok, tt.kind, tt.n, tt.ok)
		}
	}
}

func TestTable(t *testing.T) {
	table := Table(settings.DefaultPaste, settings.DefaultSave)
	if len(table) != 19 {
		t.Fatalf("expected 19 bindings, got %d", len(table))
	}
	if table[0].ID != ClearAllID || table[0].Digit != 0 || table[0].Modifiers != settings.DefaultPaste {
		t.Errorf("unexpected clear-all binding %+v", table[0])
	}

	same := Table(settings.Ctrl, settings.Ctrl)
	if len(same) != 10 {
		t.Errorf("identical sets should drop save bindings, got %d", len(same))
	}
	for _, b := range same {
		if kind, _, _ := Resolve(b.ID); kind == KindSave {
			t.Errorf("unexpected save binding %s", b)
		}
	}
}

func TestInstallRegistersTable(t *testing.T) {
	mgr := newFakeManager()
	d, _ := newDispatcher(t, mgr, Callbacks{})

	d.Install()

	if mgr.count() != 19 {
		t.Fatalf("expected 19 registrations, got %d", mgr.count())
	}
	b, ok := mgr.binding(SaveID(3))
	if !ok || b.Digit != 3 || b.Modifiers != settings.DefaultSave {
		t.Errorf("unexpected save 3 binding %+v", b)
	}
	if got := len(d.Bindings()); got != 19 {
		t.Errorf("expected 19 live bindings, got %d", got)
	}
}

func TestInstallTwiceKeepsAssignment(t *testing.T) {
	mgr := newFakeManager()
	d, _ := newDispatcher(t, mgr, Callbacks{})

	d.Install()
	first := d.Bindings()
	d.Install()
	second := d.Bindings()

	if len(first) != len(second) {
		t.Fatalf("binding count changed: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("binding %d changed: %s then %s", i, first[i], second[i])
		}
	}
	if mgr.count() != 19 {
		t.Errorf("expected 19 registrations, got %d", mgr.count())
	}
}

func TestInstallSkipsRefusedBinding(t *testing.T) {
	mgr := newFakeManager()
	mgr.refuse[PasteID(3)] = true
	d, _ := newDispatcher(t, mgr, Callbacks{})

	d.Install()

	if mgr.count() != 18 {
		t.Errorf("expected 18 registrations, got %d", mgr.count())
	}
	if _, ok := mgr.binding(PasteID(4)); !ok {
		t.Error("bindings after the refused one should still register")
	}
}

func TestSettingsChangeReinstalls(t *testing.T) {
	mgr := newFakeManager()
	d, store := newDispatcher(t, mgr, Callbacks{})
	d.Install()

	store.SetPasteModifiers(settings.Ctrl | settings.Shift)

	b, ok := mgr.binding(PasteID(1))
	if !ok || b.Modifiers != settings.Ctrl|settings.Shift {
		t.Errorf("paste binding not updated: %+v", b)
	}
	if mgr.count() != 19 {
		t.Errorf("expected 19 registrations, got %d", mgr.count())
	}
}

func TestIdenticalModifierSetsDisableSave(t *testing.T) {
	mgr := newFakeManager()
	d, store := newDispatcher(t, mgr, Callbacks{})
	d.Install()

	store.SetSaveModifiers(settings.DefaultPaste)

	if mgr.count() != 10 {
		t.Errorf("expected 10 registrations, got %d", mgr.count())
	}
	if _, ok := mgr.binding(SaveID(1)); ok {
		t.Error("save binding should not be registered")
	}
}

func TestPressRoutesToCallback(t *testing.T) {
	mgr := newFakeManager()
	rec := newRecorder()
	d, _ := newDispatcher(t, mgr, rec.callbacks())
	d.Install()

	for _, id := range []hotkey.ID{PasteID(2), SaveID(7), ClearAllID} {
		mgr.pressed <- id
	}
	for i := 0; i < 3; i++ {
		select {
		case <-rec.fired:
		case <-time.After(time.Second):
			t.Fatal("callback not invoked")
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"paste 2", "save 7", "clear-all"}
	for i, w := range want {
		if rec.calls[i] != w {
			t.Errorf("call %d: expected %q, got %q", i, w, rec.calls[i])
		}
	}
}

func TestStalePressIgnored(t *testing.T) {
	mgr := newFakeManager()
	rec := newRecorder()
	d, _ := newDispatcher(t, mgr, rec.callbacks())
	d.Install()
	d.Uninstall()

	mgr.pressed <- PasteID(1)

	select {
	case <-rec.fired:
		t.Fatal("press after uninstall should be ignored")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	mgr := newFakeManager()
	d, _ := newDispatcher(t, mgr, Callbacks{})
	d.Install()

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if mgr.count() != 0 {
		t.Errorf("expected no registrations, got %d", mgr.count())
	}
	if !mgr.closed {
		t.Error("manager should be closed")
	}
	if len(d.Bindings()) != 0 {
		t.Error("live table should be empty")
	}
}
