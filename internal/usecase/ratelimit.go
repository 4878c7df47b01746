package usecase

import (
	"context"
	"sync"
	"time"
)

// rateLimitGuard tracks the process-wide "blocked until" timestamp set when
// the server signals throttling. A 429 on one query blocks all queries until
// the window elapses; the state clears itself once now passes blockedUntil.
type rateLimitGuard struct {
	mu           sync.Mutex
	blockedUntil time.Time
	now          func() time.Time
}

func newRateLimitGuard(now func() time.Time) *rateLimitGuard {
	if now == nil {
		now = time.Now
	}
	return &rateLimitGuard{now: now}
}

// remaining returns how long outbound calls must still be held back. Zero
// means calls are allowed.
func (g *rateLimitGuard) remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.blockedUntil.IsZero() {
		return 0
	}
	if wait := g.blockedUntil.Sub(g.now()); wait > 0 {
		return wait
	}
	return 0
}

// block extends the cooldown window to now + d. A shorter window never
// shrinks a longer one already in place.
func (g *rateLimitGuard) block(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	until := g.now().Add(d)
	if until.After(g.blockedUntil) {
		g.blockedUntil = until
	}
}

// sleepContext blocks for d, returning early if ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
