package clock

import "time"

// Clock abstracts wall-clock time so date-eligibility rules can be tested
// against a fixed "today".
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// Fixed returns a Clock pinned to t. Test helper.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}
