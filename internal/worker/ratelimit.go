package worker

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-log admission controller: at most maxRequests
// admissions complete within any trailing window. One instance is shared by
// every worker of a Dispatcher and outlives individual research calls.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	log         []time.Time // admission timestamps, oldest first
	now         func() time.Time
}

// NewRateLimiter creates a limiter admitting maxRequests per window
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Second
	}

	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		log:         make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// Acquire blocks until an admission fits in the window, then records it.
// It returns early only when ctx is done, in which case nothing is recorded.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for {
		wait, ok := l.tryAdmit()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		// Re-check: other callers may have taken the slot meanwhile
	}
}

// tryAdmit runs evict-check-append as one critical section. When the window
// is full it returns how long until the oldest entry expires.
func (l *RateLimiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	if len(l.log) < l.maxRequests {
		l.log = append(l.log, now)
		return 0, true
	}

	wait := l.log[0].Add(l.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// evict drops timestamps that have left the window. Caller holds mu.
func (l *RateLimiter) evict(now time.Time) {
	i := 0
	for i < len(l.log) && now.Sub(l.log[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.log = append(l.log[:0], l.log[i:]...)
	}
}

// InFlight returns the number of admissions still inside the window
func (l *RateLimiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return len(l.log)
}

// Limits returns the configured budget
func (l *RateLimiter) Limits() (int, time.Duration) {
	return l.maxRequests, l.window
}
