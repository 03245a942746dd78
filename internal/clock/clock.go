package clock

import "time"

// Clock supplies the current time to the services. Time never advances on its
// own inside the core; expiration and delay checks are evaluated against the
// instant the clock reports when the call is made.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func NewSystem() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a hand-advanced clock used in tests.
type Manual struct {
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.now = t.UTC()
}
