// Package hotkey registers system-wide digit shortcuts.
package hotkey

import (
	"fmt"

	"github.com/petems/keyregisters/internal/settings"
)

// ID identifies a registration; pressed events carry it.
type ID uint32

// Binding is one digit plus a modifier set.
type Binding struct {
	ID        ID
	Digit     int
	Modifiers settings.Modifiers
}

func (b Binding) String() string {
	return fmt.Sprintf("%s+%d", b.Modifiers, b.Digit)
}

// Manager defines the interface for global hotkey management
type Manager interface {
	// Register claims the combination system-wide. It fails when the OS
	// refuses it, e.g. because another application owns it.
	Register(b Binding) error
	Unregister(id ID) error
	// Pressed delivers the ID of every triggered registration in OS order.
	Pressed() <-chan ID
	// Close releases every live registration.
	Close() error
}
