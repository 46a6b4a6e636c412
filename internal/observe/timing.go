package observe

import "time"

// Timing records start/end timestamps only
type Timing struct {
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewTiming creates timing with current start time
func NewTiming() *Timing {
	return NewTimingAt(time.Now())
}

// NewTimingAt creates timing measured from an earlier start, such as the
// creation time of a process being attached to.
func NewTimingAt(start time.Time) *Timing {
	return &Timing{
		StartedAt: start,
	}
}

// Complete records completion time. Later calls keep the first value.
func (t *Timing) Complete() {
	if t.CompletedAt.IsZero() {
		t.CompletedAt = time.Now()
	}
}

// Duration returns execution duration
func (t *Timing) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return time.Since(t.StartedAt)
	}
	return t.CompletedAt.Sub(t.StartedAt)
}

// Seconds returns Duration in seconds.
func (t *Timing) Seconds() float64 {
	return t.Duration().Seconds()
}
