//go:build windows

package clipboard

import "golang.org/x/sys/windows"

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	getClipboardSequenceNumber = user32.NewProc("GetClipboardSequenceNumber")
)

// sequenceCounter reads GetClipboardSequenceNumber.
type sequenceCounter struct{}

func newChangeCounter() changeCounter {
	return sequenceCounter{}
}

func (sequenceCounter) count(func() (string, error)) int64 {
	n, _, _ := getClipboardSequenceNumber.Call()
	return int64(uint32(n))
}

func (sequenceCounter) wrote(string) {}
