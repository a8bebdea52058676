package utils

import (
	"sync"
	"time"
)

// RateLimiter controls the rate of command execution
type RateLimiter struct {
	limits map[string]*userLimit
	max    int
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
}

// userLimit tracks rate limiting for a specific user
type userLimit struct {
	lastAccess time.Time
	count      int
}

// NewRateLimiter creates a limiter allowing max invocations per user and
// command within window. max <= 0 disables limiting.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*userLimit),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow checks if a user is allowed to execute a command
// Returns true if allowed, false if rate limited
func (rl *RateLimiter) Allow(userID, command string) bool {
	if rl == nil || rl.max <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := userID + ":" + command
	now := rl.now()

	limit, exists := rl.limits[key]
	if !exists {
		rl.limits[key] = &userLimit{lastAccess: now, count: 1}
		return true
	}

	// Reset the counter once the window has passed
	if now.Sub(limit.lastAccess) >= rl.window {
		limit.lastAccess = now
		limit.count = 1
		return true
	}

	if limit.count >= rl.max {
		return false
	}

	limit.count++
	return true
}

// RetryAfter returns how long until the user can run the command again.
func (rl *RateLimiter) RetryAfter(userID, command string) time.Duration {
	if rl == nil || rl.max <= 0 {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, exists := rl.limits[userID+":"+command]
	if !exists {
		return 0
	}

	elapsed := rl.now().Sub(limit.lastAccess)
	if elapsed >= rl.window {
		return 0
	}
	return rl.window - elapsed
}
