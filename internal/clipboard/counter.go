package clipboard

import "sync"

// observedCounter derives a change count from clipboard contents for
// platforms without a native sequence number. Writes of identical text by
// another process go unnoticed.
type observedCounter struct {
	mu    sync.Mutex
	seen  bool
	last  string
	value int64
}

func (c *observedCounter) count(read func() (string, error)) int64 {
	text, err := read()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.value
	}
	if !c.seen {
		c.seen = true
		c.last = text
		return c.value
	}
	if text != c.last {
		c.last = text
		c.value++
	}
	return c.value
}

func (c *observedCounter) wrote(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen || text != c.last {
		c.value++
	}
	c.seen = true
	c.last = text
}
