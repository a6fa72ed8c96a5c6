package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"garthbid/internal/domain/service/timer"
)

func TestGetTimeRemaining(t *testing.T) {
	rq := require.New(t)

	deadline := time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		now      time.Time
		expected timer.Remaining
	}{
		{
			name:     "One hour one minute one second",
			now:      deadline.Add(-3661000 * time.Millisecond),
			expected: timer.Remaining{Hours: 1, Minutes: 1, Seconds: 1},
		},
		{
			name:     "Sub-second remainder is truncated",
			now:      deadline.Add(-1999 * time.Millisecond),
			expected: timer.Remaining{Seconds: 1},
		},
		{
			name:     "Full payment window",
			now:      deadline.Add(-72 * time.Hour),
			expected: timer.Remaining{Hours: 72},
		},
		{
			name:     "Exactly at deadline",
			now:      deadline,
			expected: timer.Remaining{Expired: true},
		},
		{
			name:     "Past deadline",
			now:      deadline.Add(5 * time.Minute),
			expected: timer.Remaining{Expired: true},
		},
		{
			name:     "Less than a millisecond left",
			now:      deadline.Add(-time.Microsecond),
			expected: timer.Remaining{Expired: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.expected, timer.GetTimeRemaining(deadline, tc.now))
		})
	}
}

func TestRemainingDuration(t *testing.T) {
	rq := require.New(t)

	rq.Equal(time.Hour+time.Minute+time.Second, timer.Remaining{Hours: 1, Minutes: 1, Seconds: 1}.Duration())
	rq.Zero(timer.Remaining{Expired: true}.Duration())
}

func TestUntilRecomputesFromDeadline(t *testing.T) {
	rq := require.New(t)

	mock := clock.NewMock()
	start := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	mock.Set(start)

	deadline := start.Add(2 * time.Second)
	values := make(chan timer.Remaining, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		timer.Until(context.Background(), mock, time.Second, deadline, func(r timer.Remaining) {
			values <- r
		})
	}()

	rq.Equal(timer.Remaining{Seconds: 2}, receive(t, values))

	// опоздавший тик сразу даёт верное значение, а не вычитает секунду.
	mock.Add(time.Second)
	rq.Equal(timer.Remaining{Seconds: 1}, receive(t, values))

	mock.Add(time.Second)
	rq.Equal(timer.Remaining{Expired: true}, receive(t, values))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll did not stop after expiry")
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	mock := clock.NewMock()
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan time.Time, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		timer.Poll(ctx, mock, time.Second, func(now time.Time) bool {
			calls <- now
			return true
		})
	}()

	receive(t, calls)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll leaked after cancel")
	}

	rq.Empty(calls)
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}

	var zero T
	return zero
}
