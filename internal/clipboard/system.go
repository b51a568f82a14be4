package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System implements Board using github.com/atotto/clipboard plus the
// platform change counter.
type System struct {
	counter changeCounter
}

// changeCounter reports the platform change sequence number. read is used
// by platforms that have to derive it from observed contents.
type changeCounter interface {
	count(read func() (string, error)) int64
	wrote(text string)
}

// NewSystem creates the system clipboard board
func NewSystem() *System {
	return &System{counter: newChangeCounter()}
}

func (s *System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (s *System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	s.counter.wrote(text)
	return nil
}

// Clear writes empty text, which replaces every flavor the previous owner
// published.
func (s *System) Clear() error {
	return s.Write("")
}

func (s *System) ChangeCount() int64 {
	return s.counter.count(s.Read)
}
