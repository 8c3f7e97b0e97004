package util

import "time"

// Clock abstracts time for the keeper loop so scan scheduling is testable.
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (RealClock) Now() time.Time                         { return time.Now() }

// FrozenClock returns a fixed instant; After fires immediately.
type FrozenClock struct {
	T time.Time
}

func (c FrozenClock) Now() time.Time { return c.T }

func (c FrozenClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.T.Add(d)
	return ch
}
