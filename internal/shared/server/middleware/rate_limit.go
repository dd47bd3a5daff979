package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resume-builder/internal/shared/server/respond"
)

const defaultRateLimitGroup = "DEFAULT"

// RateLimitRule is a sustained rate per second with a burst allowance.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// RateLimitConfig selects a rule per request. Requests whose group has no
// rule pass through.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per owner and group.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewRateLimiter returns an empty limiter. now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// RateLimit rejects requests over their group's rule with 429 and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		owner := strings.TrimSpace(UserIDFromContext(c))
		if owner == "" {
			owner = "ip:" + c.ClientIP()
		}
		allowed, retryAfter := cfg.Limiter.Allow(owner+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimited, "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": retryAfter.Milliseconds(),
		})
	}
}

// Allow takes one token for key, or reports how long until one is available.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	lim := b.limiter
	l.mu.Unlock()

	if lim.AllowN(now, 1) {
		return true, 0
	}
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	res.CancelAt(now)
	return false, delay
}

// Prune drops buckets not used within maxIdle and returns how many were removed.
// A pruned owner starts again with a full burst.
func (l *RateLimiter) Prune(maxIdle time.Duration) int {
	if l == nil {
		return 0
	}
	cutoff := l.now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked buckets.
func (l *RateLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
