package banker

import (
	"time"

	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
)

const (
	DefaultLockWeekday = time.Monday
	DefaultLockHour    = 12
)

// LockClock решает, когда закрыто недельное окно предложений. Окно
// закрывается в Weekday в Hour и открывается в начале следующего дня.
type LockClock struct {
	Weekday  time.Weekday
	Hour     int
	Location *time.Location
	Override value.LockOverride
}

// LockStatus — состояние блокировки на момент запроса.
type LockStatus struct {
	Locked    bool            `json:"locked"`
	Override  bool            `json:"override"`
	LocksAt   time.Time       `json:"locksAt"`
	UnlocksAt *time.Time      `json:"unlocksAt,omitempty"`
	Countdown timer.Remaining `json:"countdown"`
}

func NewLockClock(weekday time.Weekday, hour int, loc *time.Location, override value.LockOverride) *LockClock {
	if loc == nil {
		loc = time.Local
	}

	return &LockClock{
		Weekday:  weekday,
		Hour:     hour,
		Location: loc,
		Override: override,
	}
}

func (c *LockClock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// IsLocked — запрещены ли изменяющие действия банкира в момент now.
func (c *LockClock) IsLocked(now time.Time) bool {
	switch c.Override {
	case value.LockOverrideLocked:
		return true
	case value.LockOverrideUnlocked:
		return false
	}

	t := now.In(c.location())

	return t.Weekday() == c.Weekday && t.Hour() >= c.Hour
}

// NextLockBoundary — ближайшие weekday+hour строго после now.
func (c *LockClock) NextLockBoundary(now time.Time) time.Time {
	t := now.In(c.location())

	days := (int(c.Weekday) - int(t.Weekday()) + 7) % 7 //nolint:mnd
	boundary := time.Date(t.Year(), t.Month(), t.Day()+days, c.Hour, 0, 0, 0, c.location())

	if !boundary.After(now) {
		boundary = boundary.AddDate(0, 0, 7) //nolint:mnd
	}

	return boundary
}

// Countdown каждый раз считается заново от абсолютной границы.
func (c *LockClock) Countdown(now time.Time) timer.Remaining {
	return timer.GetTimeRemaining(c.NextLockBoundary(now), now)
}

func (c *LockClock) Status(now time.Time) LockStatus {
	status := LockStatus{
		Locked:    c.IsLocked(now),
		Override:  c.Override != value.LockOverrideNone,
		LocksAt:   c.NextLockBoundary(now),
		Countdown: c.Countdown(now),
	}

	if status.Locked && !status.Override {
		t := now.In(c.location())
		unlocks := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, c.location())
		status.UnlocksAt = &unlocks
	}

	return status
}
