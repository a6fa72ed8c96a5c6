// Package timer считает обратный отсчёт от абсолютных дедлайнов.
//
// Счётчиков здесь нет: каждое значение выводится из дедлайна и текущего
// времени, пропущенный тик не сдвигает отображение.
package timer

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultInterval — период обновления живых таймеров.
const DefaultInterval = time.Second

// Remaining — остаток времени до дедлайна.
type Remaining struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

// Duration собирает r обратно в time.Duration, ноль если истёк.
func (r Remaining) Duration() time.Duration {
	return time.Duration(r.Hours)*time.Hour +
		time.Duration(r.Minutes)*time.Minute +
		time.Duration(r.Seconds)*time.Second
}

// GetTimeRemaining — целые часы, минуты и секунды от now до deadline. Часы
// не ограничены сутками.
func GetTimeRemaining(deadline, now time.Time) Remaining {
	diff := deadline.Sub(now).Milliseconds()
	if diff <= 0 {
		return Remaining{Expired: true}
	}

	const (
		msPerSecond = 1000
		msPerMinute = 60 * msPerSecond
		msPerHour   = 60 * msPerMinute
	)

	return Remaining{
		Hours:   diff / msPerHour,
		Minutes: diff % msPerHour / msPerMinute,
		Seconds: diff % msPerMinute / msPerSecond,
	}
}

// Poll вызывает fn сразу и затем на каждом тике, пока fn не вернёт false
// или не отменят ctx. Тикер останавливается на выходе.
func Poll(ctx context.Context, clk clock.Clock, interval time.Duration, fn func(now time.Time) bool) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	if !fn(clk.Now()) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !fn(clk.Now()) {
				return
			}
		}
	}
}

// Until опрашивает дедлайн и останавливается после истечения.
func Until(ctx context.Context, clk clock.Clock, interval time.Duration, deadline time.Time, fn func(Remaining)) {
	Poll(ctx, clk, interval, func(now time.Time) bool {
		r := GetTimeRemaining(deadline, now)
		fn(r)
		return !r.Expired
	})
}
