// Package clipboard owns every write to the shared system clipboard. The
// Engine runs copy-capture and paste transactions one at a time; Board is
// the text-only view of the clipboard it works against.
package clipboard

import "errors"

// ErrUnsupported is returned when no clipboard backend is available.
var ErrUnsupported = errors.New("clipboard unsupported on this system")

// Board is the plain-text system clipboard.
type Board interface {
	// Read returns the current text, "" when the clipboard holds no text.
	Read() (string, error)
	Write(text string) error
	// Clear empties the clipboard, dropping every flavor.
	Clear() error
	// ChangeCount increases whenever any process writes the clipboard.
	ChangeCount() int64
}
