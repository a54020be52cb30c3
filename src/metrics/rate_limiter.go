package metrics

import (
	"sync"
	"time"

	"pos-sync/src/utils"
)

// -----------------------------------------------------------------------------
// RateLimiter is a sliding-window counter over request timestamps. The
// window buffer's capacity equals MaxRequests, so admitted stamps can
// never outgrow it.
// -----------------------------------------------------------------------------

type RateLimiter struct {
	MaxRequests int
	Window      time.Duration

	mu     sync.Mutex
	stamps *utils.TimestampRing
	now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &RateLimiter{
		MaxRequests: maxRequests,
		Window:      window,
		stamps:      utils.NewTimestampRing(maxRequests),
		now:         time.Now,
	}
}

// -----------------------------------------------------------------------------

// Check admits or denies one request. Stamps older than the window are
// evicted first; if fewer than MaxRequests remain the call is admitted and
// recorded, otherwise it is denied along with the wait until the oldest
// stamp expires.
func (rl *RateLimiter) Check() (allowed bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.stamps.EvictBefore(now.Add(-rl.Window))

	if rl.stamps.Size() < rl.MaxRequests {
		rl.stamps.Append(now)
		return true, 0
	}

	wait := rl.stamps.Oldest().Add(rl.Window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return false, wait
}

// -----------------------------------------------------------------------------

// Reset clears all recorded timestamps unconditionally.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.stamps.Clear()
}
