package ports

import "time"

// Clock abstracts the health poller's wait between attempts so tests can
// drive polling with a fake timer instead of real sleeps.
type Clock interface {
	// After behaves like time.After.
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the real Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
