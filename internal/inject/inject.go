// Package inject synthesizes the copy and paste key combinations that drive
// the focused application.
package inject

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnavailable means the process cannot synthesize input events, either
// for lack of permission or of a helper tool.
var ErrUnavailable = errors.New("input synthesis unavailable")

// Keyboard defines the interface for key-combination injection
type Keyboard interface {
	// Copy sends the platform copy shortcut (Cmd+C / Ctrl+C).
	Copy() error
	// Paste sends the platform paste shortcut (Cmd+V / Ctrl+V).
	Paste() error
}

// Combo identifies which shortcut to send.
type Combo int

const (
	ComboCopy Combo = iota
	ComboPaste
)

func (c Combo) String() string {
	if c == ComboCopy {
		return "copy"
	}
	return "paste"
}

type keyboard struct {
	log zerolog.Logger
}

// New creates the platform keyboard injector
func New(log zerolog.Logger) Keyboard {
	return &keyboard{log: log.With().Str("component", "inject").Logger()}
}

func (k *keyboard) Copy() error {
	return k.send(ComboCopy)
}

func (k *keyboard) Paste() error {
	return k.send(ComboPaste)
}

func (k *keyboard) send(c Combo) error {
	// Implementation is platform-specific (see keyboard_darwin.go, keyboard_linux.go, etc.)
	if err := sendCombo(c); err != nil {
		k.log.Debug().Err(err).Stringer("combo", c).Msg("Key synthesis failed")
		return err
	}
	return nil
}
