// Package clock abstracts the time source so that capsule rules and the
// expiration sweeper can be driven by a deterministic clock in tests.
package clock

import "time"

// Clock supplies the current time and periodic tickers. Production code
// uses Real(); tests use Fake() and move time forward with Advance.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a Ticker that delivers ticks on its C channel
	// at the specified interval. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C and call Stop when
// the Ticker is no longer needed.
//
// C has capacity 1, matching time.Ticker: a slow consumer drops ticks
// instead of queueing them.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }
