package state

import (
	"math"
	"sync"
	"time"

	"OverlayEditor/internal/layer"
)

// Clock hands out layer ids. Ids are wall-clock milliseconds, bumped so
// that every id is strictly greater than the last one issued or observed.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a clock reading time from now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Next returns a fresh id.
func (c *Clock) Next() layer.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last
		if ms < math.MaxInt64 {
			ms++
		}
	}
	c.last = ms
	return layer.ID(ms)
}

// Observe advances the clock past an id that came from elsewhere, such as
// an imported document. Ids outside the valid range are ignored.
func (c *Clock) Observe(id layer.ID) {
	if !id.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if int64(id) > c.last {
		c.last = int64(id)
	}
}
