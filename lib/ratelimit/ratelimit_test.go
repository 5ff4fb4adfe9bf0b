package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives a Limiter without real sleeping. Sleeps advance the
// clock instead.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return ctx.Err()
}

func newFakeLimiter(limit int) (*Limiter, *fakeClock) {
	clock := &fakeClock{current: time.Unix(1700000000, 0)}
	l := New(limit)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestUnlimitedNeverWaits(t *testing.T) {
	l, clock := newFakeLimiter(0)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	require.Empty(t, clock.slept)
}

func TestAdmitsUpToLimitWithoutWaiting(t *testing.T) {
	l, clock := newFakeLimiter(5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	require.Empty(t, clock.slept)
	require.Equal(t, 5, l.Pending())
}

func TestWaitsWhenWindowFull(t *testing.T) {
	l, clock := newFakeLimiter(3)
	ctx := context.Background()

	start := clock.current
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
		clock.current = clock.current.Add(time.Second)
	}

	// window is full, the fourth admission must wait until the first
	// timestamp leaves the trailing minute
	require.NoError(t, l.Wait(ctx))
	require.Len(t, clock.slept, 1)
	require.Equal(t, start.Add(time.Minute), clock.current)
	require.Equal(t, 3, l.Pending())
}

func TestNeverExceedsLimitPerRollingWindow(t *testing.T) {
	for _, limit := range []int{1, 2, 7, 50} {
		l, clock := newFakeLimiter(limit)
		ctx := context.Background()

		var admissions []time.Time
		for i := 0; i < limit*3; i++ {
			require.NoError(t, l.Wait(ctx))
			admissions = append(admissions, clock.current)
			// uneven arrival pattern
			clock.current = clock.current.Add(time.Duration(i%3) * time.Second)
		}

		for i := range admissions {
			count := 0
			for j := i; j < len(admissions); j++ {
				if admissions[j].Sub(admissions[i]) < time.Minute {
					count++
				}
			}
			require.LessOrEqualf(t, count, limit,
				"limit=%d: %d admissions within a rolling minute", limit, count)
		}
	}
}

func TestOldEntriesEvicted(t *testing.T) {
	l, clock := newFakeLimiter(2)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	clock.current = clock.current.Add(time.Minute + time.Second)
	require.Equal(t, 0, l.Pending())

	require.NoError(t, l.Wait(ctx))
	require.Empty(t, clock.slept)
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New(1)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := l.Wait(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}
