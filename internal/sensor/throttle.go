package sensor

import (
	"sync"
	"time"
)

// throttle forwards at most one sample per rate interval. Push-based
// sources (mqtt, websocket, ble, exec) cannot be asked to slow down, so
// extra samples are simply dropped; only the latest reading matters.
type throttle struct {
	mu   sync.Mutex
	rate time.Duration
	last time.Time
	fn   Listener
	now  func() time.Time
}

func newThrottle(fn Listener, rate time.Duration) *throttle {
	return &throttle{rate: rate, fn: fn, now: time.Now}
}

// deliver passes s on unless the previous delivery was too recent.
func (t *throttle) deliver(s Sample) bool {
	t.mu.Lock()
	now := t.now()
	if t.rate > 0 && !t.last.IsZero() && now.Sub(t.last) < t.rate {
		t.mu.Unlock()
		return false
	}
	t.last = now
	fn := t.fn
	t.mu.Unlock()

	fn(s)
	return true
}
