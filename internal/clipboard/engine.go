package clipboard

import (
	"errors"
	"sync"
	"time"

	"github.com/petems/keyregisters/internal/inject"
	"github.com/petems/keyregisters/internal/loop"
	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when too many transactions are waiting for the
// clipboard.
var ErrQueueFull = errors.New("clipboard transaction queue full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("clipboard engine closed")

// Timing holds the windows of a clipboard transaction.
type Timing struct {
	// PasteRestoreDelay must exceed the time the target app needs to read
	// the clipboard after receiving the synthesized paste.
	PasteRestoreDelay   time.Duration
	PollInterval        time.Duration
	CaptureTimeout      time.Duration
	CaptureRestoreDelay time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		PasteRestoreDelay:   150 * time.Millisecond,
		PollInterval:        10 * time.Millisecond,
		CaptureTimeout:      600 * time.Millisecond,
		CaptureRestoreDelay: 20 * time.Millisecond,
	}
}

// Scheduler runs delayed continuations on the event loop.
type Scheduler interface {
	After(d time.Duration, fn func()) *loop.Timer
}

// CaptureFunc receives the result of a capture. changed is false when no
// application wrote the clipboard before the timeout.
type CaptureFunc func(text string, changed bool)

type kind int

const (
	kindPaste kind = iota
	kindCapture
)

type txn struct {
	kind kind
	text string
	done CaptureFunc

	old      string
	hijacked bool // clipboard holds something that must be restored
	before   int64
	deadline time.Time
	timer    *loop.Timer
}

// Engine serializes capture and paste transactions: one transaction owns
// the clipboard from its first read until its restoration has run. Requests
// made meanwhile wait in a FIFO queue.
type Engine struct {
	board  Board
	keys   inject.Keyboard
	sched  Scheduler
	timing Timing
	limit  int
	log    zerolog.Logger

	mu     sync.Mutex
	active *txn
	queue  []*txn
	closed bool
}

// Config wires an Engine.
type Config struct {
	Board      Board
	Keyboard   inject.Keyboard
	Scheduler  Scheduler
	Timing     Timing
	QueueLimit int
	Logger     zerolog.Logger
}

func NewEngine(cfg Config) *Engine {
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = 16
	}
	if cfg.Timing == (Timing{}) {
		cfg.Timing = DefaultTiming()
	}
	return &Engine{
		board:  cfg.Board,
		keys:   cfg.Keyboard,
		sched:  cfg.Scheduler,
		timing: cfg.Timing,
		limit:  cfg.QueueLimit,
		log:    cfg.Logger.With().Str("component", "clipboard").Logger(),
	}
}

// Paste places text on the clipboard, sends the paste shortcut and restores
// the previous content after PasteRestoreDelay. Empty text is a no-op.
// Consumption by the target application is not verified.
func (e *Engine) Paste(text string) error {
	if text == "" {
		return nil
	}
	return e.submit(&txn{kind: kindPaste, text: text})
}

// Capture sends the copy shortcut and reports what the focused application
// put on the clipboard. done runs on the event loop before the previous
// clipboard content is restored.
func (e *Engine) Capture(done CaptureFunc) error {
	return e.submit(&txn{kind: kindCapture, done: done})
}

// Busy reports whether a transaction currently owns the clipboard.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

// Pending returns the number of queued transactions.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Close cancels pending continuations, restores the clipboard of an
// in-flight transaction and drops queued ones.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if t := e.active; t != nil {
		t.timer.Stop()
		if t.hijacked {
			e.restoreLocked(t)
		}
		e.active = nil
	}
	if n := len(e.queue); n > 0 {
		e.log.Debug().Int("dropped", n).Msg("Dropping queued clipboard transactions")
	}
	e.queue = nil
	return nil
}

func (e *Engine) submit(t *txn) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.active != nil {
		if len(e.queue) >= e.limit {
			e.mu.Unlock()
			e.log.Warn().Int("limit", e.limit).Msg("Clipboard busy, dropping request")
			return ErrQueueFull
		}
		e.queue = append(e.queue, t)
		e.mu.Unlock()
		return nil
	}
	after := e.startLocked(t)
	e.mu.Unlock()

	runAll(after)
	return nil
}

// startLocked begins t and returns callbacks to run once e.mu is released.
func (e *Engine) startLocked(t *txn) []func() {
	e.active = t
	switch t.kind {
	case kindPaste:
		return e.startPasteLocked(t)
	default:
		return e.startCaptureLocked(t)
	}
}

func (e *Engine) startPasteLocked(t *txn) []func() {
	old, err := e.board.Read()
	if err != nil {
		// proceed anyway, nothing to restore
		e.log.Debug().Err(err).Msg("Failed to read clipboard before paste")
		old = ""
	}
	t.old = old

	if err := e.board.Clear(); err != nil {
		e.log.Debug().Err(err).Msg("Failed to clear clipboard")
	}
	t.hijacked = true
	if err := e.board.Write(t.text); err != nil {
		e.log.Error().Err(err).Msg("Failed to write clipboard")
		e.restoreLocked(t)
		return e.releaseLocked(t)
	}

	if err := e.keys.Paste(); err != nil {
		e.log.Warn().Err(err).Msg("Paste shortcut not delivered")
		e.restoreLocked(t)
		return e.releaseLocked(t)
	}

	t.timer = e.sched.After(e.timing.PasteRestoreDelay, func() { e.finish(t) })
	return nil
}

func (e *Engine) startCaptureLocked(t *txn) []func() {
	t.before = e.board.ChangeCount()
	old, readErr := e.board.Read()
	if readErr != nil {
		e.log.Debug().Err(readErr).Msg("Failed to read clipboard before capture")
	}
	t.old = old

	if err := e.keys.Copy(); err != nil {
		// no copy was sent; report what is already on the clipboard
		e.log.Warn().Err(err).Msg("Copy shortcut not delivered")
		after := e.releaseLocked(t)
		return append([]func(){func() { t.deliver(old, false) }}, after...)
	}
	// an unreadable clipboard cannot be put back, so leave whatever the
	// copy produced in place
	t.hijacked = readErr == nil
	t.deadline = time.Now().Add(e.timing.CaptureTimeout)
	t.timer = e.sched.After(e.timing.PollInterval, func() { e.poll(t) })
	return nil
}

func (e *Engine) poll(t *txn) {
	e.mu.Lock()
	if e.active != t {
		e.mu.Unlock()
		return
	}

	changed := e.board.ChangeCount() != t.before
	if !changed && time.Now().Before(t.deadline) {
		t.timer = e.sched.After(e.timing.PollInterval, func() { e.poll(t) })
		e.mu.Unlock()
		return
	}

	text, err := e.board.Read()
	if err != nil {
		e.log.Debug().Err(err).Msg("Failed to read captured text")
	}
	if !changed {
		e.log.Debug().Msg("Capture timed out without a clipboard change")
	}
	t.timer = e.sched.After(e.timing.CaptureRestoreDelay, func() { e.finish(t) })
	e.mu.Unlock()

	t.deliver(text, changed)
}

// finish restores the clipboard and hands it to the next queued transaction.
func (e *Engine) finish(t *txn) {
	e.mu.Lock()
	if e.active != t {
		e.mu.Unlock()
		return
	}
	if t.hijacked {
		e.restoreLocked(t)
	}
	after := e.releaseLocked(t)
	e.mu.Unlock()

	runAll(after)
}

// restoreLocked clears the clipboard and puts back the content saved when t
// started.
func (e *Engine) restoreLocked(t *txn) {
	if err := e.board.Clear(); err != nil {
		e.log.Debug().Err(err).Msg("Failed to clear clipboard")
	}
	if t.old != "" {
		if err := e.board.Write(t.old); err != nil {
			e.log.Warn().Err(err).Msg("Failed to restore clipboard")
		}
	}
	t.hijacked = false
}

// releaseLocked drops ownership of the clipboard and starts the next queued
// transaction, if any.
func (e *Engine) releaseLocked(t *txn) []func() {
	if e.active == t {
		e.active = nil
	}
	if e.closed || len(e.queue) == 0 {
		return nil
	}
	next := e.queue[0]
	e.queue = e.queue[1:]
	return e.startLocked(next)
}

func (t *txn) deliver(text string, changed bool) {
	if t.done != nil {
		t.done(text, changed)
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
