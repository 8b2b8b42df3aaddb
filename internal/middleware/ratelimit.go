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
)

const (
	defaultRPS        = 10
	defaultBurst      = 20
	globalFactor      = 5
	limiterIdleTTL    = 15 * time.Minute
	limiterSweepEvery = 2 * time.Minute
)

// KeyedLimiter hands out one token bucket per key. Buckets idle for longer
// than ttl are dropped on the next sweep, which piggybacks on inserts.
type KeyedLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewKeyedLimiter(rps, burst int, ttl time.Duration) *KeyedLimiter {
	if ttl <= 0 {
		ttl = limiterIdleTTL
	}
	return &KeyedLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from key's bucket. When it is empty, wait is the
// time until the next token.
func (k *KeyedLimiter) Allow(key string) (ok bool, wait time.Duration) {
	lim := k.limiter(key)
	if lim.Allow() {
		return true, 0
	}
	return false, nextTokenIn(lim)
}

// Len is the number of live buckets.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *KeyedLimiter) limiter(key string) *rate.Limiter {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()
	if b, ok := k.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}
	b := &bucket{lim: rate.NewLimiter(k.rps, k.burst), lastSeen: now}
	k.buckets[key] = b
	if now.Sub(k.lastSweep) > limiterSweepEvery {
		k.sweepLocked(now)
	}
	SetRateLimitKeyGauge(len(k.buckets))
	return b.lim
}

func (k *KeyedLimiter) sweepLocked(now time.Time) {
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.ttl {
			delete(k.buckets, key)
		}
	}
	k.lastSweep = now
	RecordRateLimitSweep()
}

// RateLimiterAutoKey limits per access key (Authorization/x-api-key/?key) and
// falls back to client IP. A global bucket at 5x the per-key rate guards the
// vendor quota shared by all callers.
func RateLimiterAutoKey(rps int, burst int) gin.HandlerFunc {
	if rps <= 0 {
		rps = defaultRPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	perKey := NewKeyedLimiter(rps, burst, limiterIdleTTL)
	global := rate.NewLimiter(rate.Limit(rps*globalFactor), burst*globalFactor)

	return func(c *gin.Context) {
		if !global.Allow() {
			reject(c, nextTokenIn(global), "Global rate limit exceeded")
			return
		}
		key := extractAPIKey(c)
		if key == "" {
			key = c.ClientIP()
		}
		if ok, wait := perKey.Allow(key); !ok {
			reject(c, wait, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, wait time.Duration, msg string) {
	RecordRateLimitRejection()
	c.Header("Retry-After", retryAfterHeader(wait))
	abortEnvelope(c, http.StatusTooManyRequests, "rate_limit_exceeded", "rate_limit_error", msg)
}

func extractAPIKey(c *gin.Context) string {
	if s := c.GetString("api_key"); strings.TrimSpace(s) != "" {
		return s
	}
	return providedAccessKey(c)
}

// nextTokenIn peeks at the delay without consuming a token.
func nextTokenIn(lim *rate.Limiter) time.Duration {
	r := lim.Reserve()
	defer r.Cancel()
	return r.Delay()
}

func retryAfterHeader(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
