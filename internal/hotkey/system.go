package hotkey

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"
)

const unregisterTimeout = 500 * time.Millisecond

type registration struct {
	binding Binding
	hk      *hotkey.Hotkey
	stop    chan struct{}
}

// System implements Manager with golang.design/x/hotkey.
type System struct {
	mu      sync.Mutex
	regs    map[ID]*registration
	pressed chan ID
	log     zerolog.Logger
}

// New creates the system hotkey manager
func New(log zerolog.Logger) *System {
	return &System{
		regs:    make(map[ID]*registration),
		pressed: make(chan ID, 16),
		log:     log.With().Str("component", "hotkey").Logger(),
	}
}

func (s *System) Register(b Binding) error {
	if b.Digit < 0 || b.Digit > 9 {
		return fmt.Errorf("register %s: digit out of range", b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regs[b.ID]; ok {
		return fmt.Errorf("register %s: id %d already in use", b, b.ID)
	}

	hk := hotkey.New(modifiers(b.Modifiers), digitKeys[b.Digit])
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", b, err)
	}

	reg := &registration{binding: b, hk: hk, stop: make(chan struct{})}
	s.regs[b.ID] = reg
	go s.listen(reg)

	s.log.Debug().Stringer("binding", b).Uint32("id", uint32(b.ID)).Msg("Hotkey registered")
	return nil
}

func (s *System) listen(reg *registration) {
	for {
		select {
		case <-reg.stop:
			return
		case _, ok := <-reg.hk.Keydown():
			if !ok {
				return
			}
			select {
			case s.pressed <- reg.binding.ID:
			case <-reg.stop:
				return
			}
		}
	}
}

func (s *System) Unregister(id ID) error {
	s.mu.Lock()
	reg, ok := s.regs[id]
	delete(s.regs, id)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.release(reg)
}

// release stops the listener and unregisters with a timeout, the native
// call can block when the main thread is busy.
func (s *System) release(reg *registration) error {
	close(reg.stop)

	done := make(chan error, 1)
	go func() { done <- reg.hk.Unregister() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("unregister %s: %w", reg.binding, err)
		}
		return nil
	case <-time.After(unregisterTimeout):
		return fmt.Errorf("unregister %s: timed out", reg.binding)
	}
}

func (s *System) Pressed() <-chan ID {
	return s.pressed
}

func (s *System) Close() error {
	s.mu.Lock()
	regs := s.regs
	s.regs = make(map[ID]*registration)
	s.mu.Unlock()

	var firstErr error
	for _, reg := range regs {
		if err := s.release(reg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunOnMainThread runs fn with the main thread reserved for the native
// event loop (required on macOS).
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

var digitKeys = [10]hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}
