package animation

import (
	"math"
	"testing"
	"time"
)

func TestAnimationHitsEndpoints(t *testing.T) {
	now := time.Now()
	a := NewAt(now, 100, 200, Simple{Easing: EaseLinear}, time.Second)

	a.SetCurrentTime(now)
	if got := a.Value(); got != 100 {
		t.Fatalf("expected start value 100 at t=0, got %v", got)
	}
	a.SetCurrentTime(now.Add(500 * time.Millisecond))
	if got := a.Value(); got != 150 {
		t.Fatalf("expected midpoint value 150, got %v", got)
	}
	a.SetCurrentTime(now.Add(3 * time.Second))
	if got := a.Value(); got != 200 {
		t.Fatalf("expected end value 200 past the duration, got %v", got)
	}
}

func TestAnimationFinishBoundary(t *testing.T) {
	now := time.Now()
	a := NewAt(now, 0, 1, Simple{Easing: EaseLinear}, time.Second)

	a.SetCurrentTime(now.Add(time.Second - time.Nanosecond))
	if a.IsFinished() {
		t.Fatalf("expected animation to still run just before the duration")
	}
	a.SetCurrentTime(now.Add(time.Second))
	if !a.IsFinished() {
		t.Fatalf("expected animation to finish exactly at the duration")
	}
}

func TestAnimationValueIsAPureRead(t *testing.T) {
	now := time.Now()
	a := NewAt(now, 0, 10, Simple{Easing: EaseLinear}, time.Second)
	a.SetCurrentTime(now.Add(250 * time.Millisecond))
	first := a.Value()
	if second := a.Value(); second != first {
		t.Fatalf("expected repeated reads to return %v, got %v", first, second)
	}
}

func TestAnimationRejectsEqualEndpoints(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for equal start and end")
		}
	}()
	New(5, 5, Simple{Easing: EaseLinear}, time.Second)
}

func TestSpringAnimationOverridesDuration(t *testing.T) {
	now := time.Now()
	spring := Spring{Damping: 2, Mass: 1, Stiffness: 100, Epsilon: 0.0001}
	a := NewAt(now, 0, 1, spring, 42*time.Hour)

	if got, want := a.Duration(), spring.Duration(); got != want {
		t.Fatalf("expected spring settling duration %v, got %v", want, got)
	}
	a.SetCurrentTime(now.Add(a.Duration()))
	if diff := math.Abs(a.Value() - 1); diff > 0.001 {
		t.Fatalf("expected value to settle near 1, still off by %v", diff)
	}
	if !a.IsFinished() {
		t.Fatalf("expected spring animation to report finished at its settling time")
	}
}

func TestReversedAnimationDescends(t *testing.T) {
	now := time.Now()
	a := NewAt(now, 1, 0, Simple{Easing: EaseLinear}, time.Second)
	a.SetCurrentTime(now.Add(250 * time.Millisecond))
	if got := a.Value(); got != 0.75 {
		t.Fatalf("expected descending value 0.75, got %v", got)
	}
}
