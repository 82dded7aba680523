// Package countdown computes the time left until the promotion deadline.
package countdown

import (
	"context"
	"time"
)

// Remaining is a floored day/hour/minute/second decomposition of a duration.
type Remaining struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
	Mins  int `json:"mins"`
	Secs  int `json:"secs"`
}

// IsZero reports whether the deadline has been reached.
func (r Remaining) IsZero() bool {
	return r == Remaining{}
}

// Compute returns the time left between now and target. Every component is
// floored and never negative; at or past target the result is all zero.
func Compute(target, now time.Time) Remaining {
	diff := target.Sub(now)
	if diff <= 0 {
		return Remaining{}
	}
	total := int64(diff / time.Second)
	return Remaining{
		Days:  int(total / 86400),
		Hours: int(total / 3600 % 24),
		Mins:  int(total / 60 % 60),
		Secs:  int(total % 60),
	}
}

// Timer ticks toward a fixed deadline.
type Timer struct {
	target   time.Time
	interval time.Duration
	now      func() time.Time
}

// NewTimer returns a timer for target ticking once per second.
func NewTimer(target time.Time) *Timer {
	return &Timer{target: target, interval: time.Second, now: time.Now}
}

// WithClock overrides the time source.
func (t *Timer) WithClock(now func() time.Time) *Timer {
	if now != nil {
		t.now = now
	}
	return t
}

// WithInterval overrides the tick period.
func (t *Timer) WithInterval(interval time.Duration) *Timer {
	if interval > 0 {
		t.interval = interval
	}
	return t
}

// Target returns the deadline.
func (t *Timer) Target() time.Time {
	return t.target
}

// Now returns the time left at this instant.
func (t *Timer) Now() Remaining {
	return Compute(t.target, t.now())
}

// Run calls emit once per interval until the deadline passes or ctx is done.
// After the deadline it emits the zero value once and stops ticking.
func (t *Timer) Run(ctx context.Context, emit func(Remaining)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			left := t.Now()
			emit(left)
			if left.IsZero() {
				return
			}
		}
	}
}
