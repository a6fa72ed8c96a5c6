package banker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"garthbid/internal/domain/service/banker"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
)

// 2026-02-02 понедельник.
func monday(hour, minute, second int) time.Time {
	return time.Date(2026, time.February, 2, hour, minute, second, 0, time.UTC)
}

func TestLockClockIsLocked(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name     string
		now      time.Time
		override value.LockOverride
		want     bool
	}{
		{name: "Monday morning", now: monday(11, 59, 59), want: false},
		{name: "Monday noon", now: monday(12, 0, 0), want: true},
		{name: "Monday night", now: monday(23, 59, 59), want: true},
		{name: "Tuesday", now: monday(24, 0, 0), want: false},
		{name: "Sunday", now: monday(-1, 0, 0), want: false},
		{name: "Next Monday noon", now: monday(12, 0, 0).AddDate(0, 0, 7), want: true},
		{name: "Forced locked", now: monday(-72, 0, 0), override: value.LockOverrideLocked, want: true},
		{name: "Forced unlocked", now: monday(13, 0, 0), override: value.LockOverrideUnlocked, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			lock := banker.NewLockClock(time.Monday, 12, time.UTC, tc.override)
			rq.Equal(tc.want, lock.IsLocked(tc.now))
		})
	}
}

func TestLockClockTimezone(t *testing.T) {
	rq := require.New(t)

	est := time.FixedZone("EST", -5*60*60)
	lock := banker.NewLockClock(time.Monday, 12, est, value.LockOverrideNone)

	rq.False(lock.IsLocked(monday(12, 0, 0)), "07:00 in EST")
	rq.True(lock.IsLocked(monday(17, 0, 0)), "12:00 in EST")
	rq.True(lock.NextLockBoundary(monday(12, 0, 0)).Equal(monday(17, 0, 0)))
}

func TestNextLockBoundary(t *testing.T) {
	rq := require.New(t)

	lock := banker.NewLockClock(time.Monday, 12, time.UTC, value.LockOverrideNone)
	nextWeek := monday(12, 0, 0).AddDate(0, 0, 7)

	testCases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "Before the cutoff", now: monday(11, 0, 0), want: monday(12, 0, 0)},
		{name: "Exactly at the cutoff", now: monday(12, 0, 0), want: nextWeek},
		{name: "After the cutoff", now: monday(12, 0, 1), want: nextWeek},
		{name: "Wednesday", now: monday(48, 30, 0), want: nextWeek},
		{name: "Sunday night", now: monday(-1, 0, 0), want: monday(12, 0, 0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			got := lock.NextLockBoundary(tc.now)
			rq.True(got.Equal(tc.want), "got %s, want %s", got, tc.want)
			rq.True(got.After(tc.now))
		})
	}
}

func TestLockCountdown(t *testing.T) {
	rq := require.New(t)

	lock := banker.NewLockClock(time.Monday, 12, time.UTC, value.LockOverrideNone)

	rq.Equal(timer.Remaining{Hours: 1, Minutes: 1, Seconds: 1}, lock.Countdown(monday(10, 58, 59)))
	rq.Equal(timer.Remaining{Hours: 168}, lock.Countdown(monday(12, 0, 0)))
}

func TestLockStatus(t *testing.T) {
	rq := require.New(t)

	lock := banker.NewLockClock(time.Monday, 12, time.UTC, value.LockOverrideNone)

	status := lock.Status(monday(15, 0, 0))
	rq.True(status.Locked)
	rq.False(status.Override)
	rq.NotNil(status.UnlocksAt)
	rq.True(status.UnlocksAt.Equal(monday(24, 0, 0)))

	status = lock.Status(monday(9, 0, 0))
	rq.False(status.Locked)
	rq.Nil(status.UnlocksAt)
	rq.True(status.LocksAt.Equal(monday(12, 0, 0)))

	lock.Override = value.LockOverrideLocked
	status = lock.Status(monday(9, 0, 0))
	rq.True(status.Locked)
	rq.True(status.Override)
	rq.Nil(status.UnlocksAt)
}
