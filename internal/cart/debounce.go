package cart

import (
	"sync"
	"time"

	"github.com/example/storefront/internal/models"
)

// Coalescer debounces cart snapshots. Schedule cancels any pending timer and
// arms a new one, so at most one push is pending and only the latest snapshot
// is ever delivered. There is no queue; superseded snapshots are dropped.
type Coalescer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	fn      func(models.Cart)
	stopped bool
}

// NewCoalescer builds a coalescer that delivers to fn after delay of quiet.
func NewCoalescer(delay time.Duration, fn func(models.Cart)) *Coalescer {
	return &Coalescer{delay: delay, fn: fn}
}

// Schedule arms delivery of this snapshot, superseding any pending one.
func (c *Coalescer) Schedule(snapshot models.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.fn(snapshot)
	})
}

// Stop cancels any pending delivery and rejects future schedules. Used at
// session teardown.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Flush delivers the given snapshot immediately, cancelling any pending
// timer. Used on shutdown so a final edit is not lost to the window.
func (c *Coalescer) Flush(snapshot models.Cart) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	stopped := c.stopped
	c.mu.Unlock()

	if !stopped {
		c.fn(snapshot)
	}
}
