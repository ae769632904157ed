package testfixtures

import (
	"testing"
	"time"
)

func TestClock_ZeroStartUsesReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected %v, got %v", ReferenceTime(), clock.Now())
	}
}

func TestClock_SetAndAdvance(t *testing.T) {
	start := time.Date(2025, time.September, 8, 7, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(45 * time.Minute); !got.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("Advance returned %v", got)
	}

	later := start.AddDate(0, 0, 1)
	clock.Set(later)
	if !clock.Current().Equal(later) {
		t.Fatalf("expected %v after Set, got %v", later, clock.Current())
	}
}

func TestClock_NowFuncTracksTheClock(t *testing.T) {
	clock := NewClock(time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC))
	now := clock.NowFunc()

	before := now()
	clock.Advance(time.Hour)
	after := now()

	if !after.Equal(before.Add(time.Hour)) {
		t.Fatalf("expected injected func to observe the advance, got %v then %v", before, after)
	}
}
