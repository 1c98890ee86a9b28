package task

import (
	"fmt"
	"time"
)

// Award cycles are calendar half-months: the 1st through the 14th is the "A"
// half, the 15th onward the "B" half.

// CycleID derives the cycle identifier (YYMM + half letter) for a point in time.
func CycleID(t time.Time) string {
	t = t.UTC()
	half := "B"
	if t.Day() < 15 {
		half = "A"
	}
	return fmt.Sprintf("%s%s", t.Format("0601"), half)
}

// InRolloverWindow reports whether t falls in the five minutes after a cycle
// boundary, during which the awards job finalizes the closing cycle and the
// activity job stands down.
func InRolloverWindow(t time.Time) bool {
	t = t.UTC()
	if t.Day() != 1 && t.Day() != 15 {
		return false
	}
	return t.Hour() == 0 && t.Minute() < 5
}

// PrevCycleLookback returns how far back to reach for the previous cycle's
// identifier. Half-months are uneven: from the middle of a half, ten days
// lands in the previous half, but near the boundaries it takes twenty to
// clear the current one.
func PrevCycleLookback(t time.Time) time.Duration {
	day := t.UTC().Day()
	if (8 < day && day < 15) || 22 < day {
		return 20 * 24 * time.Hour
	}
	return 10 * 24 * time.Hour
}

// CycleStart returns the boundary instant of the cycle containing t.
func CycleStart(t time.Time) time.Time {
	t = t.UTC()
	day := 1
	if t.Day() >= 15 {
		day = 15
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// CycleEnd returns the boundary instant at which the cycle containing t closes.
func CycleEnd(t time.Time) time.Time {
	t = t.UTC()
	if t.Day() < 15 {
		return time.Date(t.Year(), t.Month(), 15, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// RoundedTime rounds t to the nearest multiple of interval, ties away from
// the epoch. Used to key XP snapshots at 5-minute buckets.
func RoundedTime(t time.Time, interval time.Duration) time.Time {
	return t.UTC().Round(interval)
}
