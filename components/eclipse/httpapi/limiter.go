package httpapi

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a session sends chat messages too quickly.
var ErrRateLimited = errors.New("httpapi: chat rate limit exceeded")

// DefaultLimiterIdle is how long an unused session bucket is kept.
const DefaultLimiterIdle = 3 * time.Minute

// ChatLimiter keeps one token bucket per session. Buckets idle for longer
// than the idle window are swept.
type ChatLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	sessions  map[string]*sessionBucket
	lastSweep time.Time
}

type sessionBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewChatLimiter allows rps messages per second per session with the given
// burst. A non-positive rps disables limiting.
func NewChatLimiter(rps float64, burst int) *ChatLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &ChatLimiter{
		limit:    limit,
		burst:    burst,
		idle:     DefaultLimiterIdle,
		now:      time.Now,
		sessions: make(map[string]*sessionBucket),
	}
}

// Allow reports whether the session may send another message now. Callers
// check the session exists first so unknown ids never allocate a bucket.
func (l *ChatLimiter) Allow(sessionID string) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}
	l.mu.Lock()
	now := l.now()
	l.sweep(now)
	bucket, ok := l.sessions[sessionID]
	if !ok {
		bucket = &sessionBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.sessions[sessionID] = bucket
	}
	bucket.lastSeen = now
	l.mu.Unlock()
	return bucket.limiter.AllowN(now, 1)
}

// Len returns the number of tracked session buckets.
func (l *ChatLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// sweep drops idle buckets, at most once per idle window. Callers hold mu.
func (l *ChatLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for id, bucket := range l.sessions {
		if now.Sub(bucket.lastSeen) > l.idle {
			delete(l.sessions, id)
		}
	}
}
