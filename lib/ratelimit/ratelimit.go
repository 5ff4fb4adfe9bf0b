package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const window = time.Minute

// Limiter admits at most `limit` requests in any rolling one minute
// window. A limit of 0 (or less) admits everything immediately.
//
// Admission is evict-then-wait-then-record: timestamps that fell out
// of the trailing window are dropped, and while the window is still
// full the caller sleeps until the oldest admission expires. Only an
// admitted request is recorded, so the window never holds more than
// `limit` entries.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	stamps []time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(limit int) *Limiter {
	return &Limiter{
		limit: limit,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Limit returns the configured requests-per-minute ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

// Wait blocks until a request may be initiated without exceeding the
// ceiling, then records the admission. It returns early with the
// context's error when ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limit <= 0 {
		return ctx.Err()
	}

	for {
		l.mu.Lock()
		now := l.now()
		l.evict(now)

		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.stamps[0].Add(window).Sub(now)
		l.mu.Unlock()

		slog.WarnContext(ctx, "rate limited, backing off", "wait", wait, "limit", l.limit)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Pending reports how many admissions currently sit in the trailing
// window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return len(l.stamps)
}

// caller must hold l.mu
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}
