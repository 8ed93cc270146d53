package http

import (
	"sync"
	"time"
)

const (
	// Mutations per client IP per window. Reads are never limited.
	rateLimitBudget = 60
	rateLimitWindow = time.Minute

	rateLimitSweepEvery = 5 * time.Minute
	rateLimitStaleAfter = 10 * time.Minute
)

// rateLimiter counts mutation requests per client IP over a fixed
// window, in memory. Single-process only, which matches the
// one-household deployment model.
type rateLimiter struct {
	mu   sync.Mutex
	seen map[string]*ipWindow
	done chan struct{}
	once sync.Once
}

type ipWindow struct {
	windowStart time.Time
	count       int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		seen: make(map[string]*ipWindow),
		done: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow reports whether a mutation from the given IP fits the budget.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.seen[clientIP]
	if !ok || now.Sub(w.windowStart) > rateLimitWindow {
		rl.seen[clientIP] = &ipWindow{windowStart: now, count: 1}
		return true
	}

	w.count++
	return w.count <= rateLimitBudget
}

// sweepLoop drops IPs that have been quiet long enough to not matter.
func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimitSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now().Add(-rateLimitStaleAfter))
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.seen {
		if w.windowStart.Before(cutoff) {
			delete(rl.seen, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
