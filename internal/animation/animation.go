// Package animation drives time-based interpolation between two values.
// Animations are advanced by an external frame scheduler: the owner calls
// SetCurrentTime once per frame and reads Value and IsFinished afterwards.
package animation

import "time"

// Animation interpolates from Start to End over a fixed duration using a
// Curve. It carries no clock of its own.
type Animation struct {
	Start float64
	End   float64

	current     float64
	curve       Curve
	startedAt   time.Time
	currentTime time.Time
	duration    time.Duration
}

// New creates an animation running from start to end over duration, starting
// now. Spring curves ignore the supplied duration and use their own settling
// time instead. Panics when start equals end: such an animation would be
// invisible and signals a caller bug.
func New(start, end float64, curve Curve, duration time.Duration) *Animation {
	return NewAt(time.Now(), start, end, curve, duration)
}

// NewAt is New with an explicit start instant.
func NewAt(now time.Time, start, end float64, curve Curve, duration time.Duration) *Animation {
	if start == end {
		panic("animation: start and end are equal")
	}
	if spring, ok := curve.(Spring); ok {
		duration = spring.Duration()
	}
	return &Animation{
		Start:       start,
		End:         end,
		current:     start,
		curve:       curve,
		startedAt:   now,
		currentTime: now,
		duration:    duration,
	}
}

// SetCurrentTime advances the animation clock and recomputes the current
// value from elapsed time alone.
func (a *Animation) SetCurrentTime(now time.Time) {
	a.currentTime = now
	elapsed := a.currentTime.Sub(a.startedAt).Seconds()
	switch c := a.curve.(type) {
	case Simple:
		a.current = c.Y(a.progress(elapsed))*(a.End-a.Start) + a.Start
	case Cubic:
		a.current = c.Y(a.progress(elapsed))*(a.End-a.Start) + a.Start
	case Spring:
		// Springs run on raw elapsed seconds; overshoot past End is part
		// of the model.
		a.current = c.Oscillate(elapsed)*(a.End-a.Start) + a.Start
	}
}

// progress normalizes elapsed seconds into [0, 1] of the total duration.
func (a *Animation) progress(elapsed float64) float64 {
	total := a.duration.Seconds()
	if total <= 0 {
		return 1
	}
	x := elapsed / total
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Value returns the value computed by the last SetCurrentTime call. It never
// recomputes; callers advance the clock first.
func (a *Animation) Value() float64 {
	return a.current
}

// IsFinished reports whether the animation clock has reached the duration.
func (a *Animation) IsFinished() bool {
	return a.currentTime.Sub(a.startedAt) >= a.duration
}

// Duration returns the effective duration, after any spring override.
func (a *Animation) Duration() time.Duration {
	return a.duration
}
