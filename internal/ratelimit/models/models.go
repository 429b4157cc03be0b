// Package models holds rate limiting results and login lockout state.
package models

import "time"

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only meaningful when not allowed.
	RetryAfter int
}

// Lockout tracks failed logins for one username and client IP pair.
type Lockout struct {
	Key           string
	Failures      int
	FirstFailure  time.Time
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

// LockoutKey scopes failures to a username and IP so one attacker cannot
// lock a visitor out from everywhere.
func LockoutKey(username, ip string) string {
	return "login:" + username + ":" + ip
}

func (l *Lockout) IsLockedAt(now time.Time) bool {
	return l.LockedUntil != nil && now.Before(*l.LockedUntil)
}

// WindowExpiredAt reports whether the failure window has elapsed, after
// which failures start counting from zero.
func (l *Lockout) WindowExpiredAt(now time.Time, window time.Duration) bool {
	return l.Failures == 0 || now.Sub(l.FirstFailure) >= window
}

func (l *Lockout) Lock(until time.Time) {
	l.LockedUntil = &until
}

// RetryAfterSeconds rounds up so clients never retry a moment too early.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
