package auth

import (
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles admin logins per client IP and username: after
// MaxAttempts failures inside WindowDuration the pair is locked out for
// LockoutDuration. Expired records are swept while failures are recorded,
// so the limiter owns no goroutine.
type RateLimiter struct {
	mu        sync.Mutex
	attempts  map[string]*attemptRecord
	cfg       RateLimitConfig
	lastSweep time.Time
	now       func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig holds the limiter settings. Zero values fall back to
// 5 attempts, a 15 minute window, a 30 minute lockout and a 5 minute sweep.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = 15 * time.Minute
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// attemptKey ignores username case so "Admin" and "admin" share a counter.
func attemptKey(ip, username string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(username))
}

// Allow reports whether a login attempt may proceed and, if not, how long
// the caller must wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[attemptKey(ip, username)]
	switch {
	case !ok:
		return true, 0
	case now.Before(record.lockedUntil):
		return false, record.lockedUntil.Sub(now)
	case rl.expired(record, now), record.count < rl.cfg.MaxAttempts:
		return true, 0
	}
	return false, rl.cfg.LockoutDuration
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	k := attemptKey(ip, username)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.cfg.CleanupInterval {
		rl.sweep(now)
	}

	record, ok := rl.attempts[k]
	if !ok || now.Sub(record.firstAttempt) > rl.cfg.WindowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[k] = record
	}

	record.count++
	if record.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	record.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess clears the failure record after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, attemptKey(ip, username))
	rl.mu.Unlock()
}

// expired reports whether the record's window and lockout are both over.
func (rl *RateLimiter) expired(record *attemptRecord, now time.Time) bool {
	return now.Sub(record.firstAttempt) > rl.cfg.WindowDuration && !now.Before(record.lockedUntil)
}

// sweep drops expired records. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, record := range rl.attempts {
		if rl.expired(record, now) {
			delete(rl.attempts, k)
		}
	}
	rl.lastSweep = now
}
