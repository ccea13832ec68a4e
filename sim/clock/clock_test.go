package clock

import (
	"testing"
	"time"
)

func TestTimerFiresOncePerPeriod(t *testing.T) {
	tm := NewTimer(50 * time.Millisecond)

	tm.Tick(30 * time.Millisecond)
	if tm.Finished() {
		t.Fatalf("Finished() = true after 30ms, want false")
	}
	tm.Tick(30 * time.Millisecond)
	if !tm.Finished() {
		t.Fatalf("Finished() = false after 60ms, want true")
	}
	if got := tm.Elapsed(); got != 10*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 10ms", got)
	}
	tm.Tick(time.Millisecond)
	if tm.Finished() {
		t.Fatalf("Finished() stayed true on the next advance")
	}
}

func TestTimerCountsMultipleCompletions(t *testing.T) {
	tm := NewTimer(50 * time.Millisecond)
	tm.Tick(175 * time.Millisecond)
	if got := tm.TimesFinished(); got != 3 {
		t.Fatalf("TimesFinished() = %d, want 3", got)
	}
	if got := tm.Elapsed(); got != 25*time.Millisecond {
		t.Fatalf("Elapsed() = %v, want 25ms", got)
	}
}

func TestTimerDefaultPeriod(t *testing.T) {
	if got := NewTimer(0).Period(); got != DefaultPeriod {
		t.Fatalf("NewTimer(0).Period() = %v, want %v", got, DefaultPeriod)
	}
}

func TestPhaseFlip(t *testing.T) {
	p := PhaseReduce
	if p = p.Flip(); p != PhaseMark {
		t.Fatalf("Flip() = %v, want mark", p)
	}
	if p = p.Flip(); p != PhaseReduce {
		t.Fatalf("Flip() = %v, want reduce", p)
	}
}
