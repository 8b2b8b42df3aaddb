package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func limitedRouter(rps, burst int) *gin.Engine {
	r := gin.New()
	r.Use(RateLimiterAutoKey(rps, burst))
	r.POST("/api/translate", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimiterAutoKeyPerKey(t *testing.T) {
	r := limitedRouter(1, 1)

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
		if key != "" {
			req.Header.Set("x-api-key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("a").Code)
	w := send("a")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Rate limit exceeded", env.Error)
	secs, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 1)

	// a different key has its own bucket
	assert.Equal(t, http.StatusOK, send("b").Code)
}

func TestRateLimiterFallsBackToClientIP(t *testing.T) {
	r := limitedRouter(1, 1)
	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestRateLimiterGlobalGuard(t *testing.T) {
	// global burst is 5x per-key burst; distinct keys exhaust it
	r := limitedRouter(1, 1)
	codes := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/translate", nil)
		req.Header.Set("Authorization", "Bearer key-"+strconv.Itoa(i))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "Global rate limit exceeded", decodeEnvelope(t, w).Error)
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 200, 200, 200, 429}, codes)
}

func TestExtractAPIKeyPrefersAuthenticatedKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?key=query", nil)
	assert.Equal(t, "query", extractAPIKey(c))
	c.Set("api_key", "authed")
	assert.Equal(t, "authed", extractAPIKey(c))
}

func TestKeyedLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	k := NewKeyedLimiter(1, 1, time.Minute)
	k.now = func() time.Time { return now }

	ok, _ := k.Allow("a")
	require.True(t, ok)
	ok, wait := k.Allow("a")
	assert.False(t, ok)
	assert.InDelta(t, time.Second.Seconds(), wait.Seconds(), 0.1)
	assert.Equal(t, 1, k.Len())

	// "a" idles past the TTL; the next insert after the sweep interval drops it
	now = now.Add(3 * time.Minute)
	ok, _ = k.Allow("b")
	require.True(t, ok)
	assert.Equal(t, 1, k.Len())
	k.mu.Lock()
	_, stillThere := k.buckets["a"]
	k.mu.Unlock()
	assert.False(t, stillThere)
}

func TestNextTokenInDoesNotConsume(t *testing.T) {
	li := rate.NewLimiter(rate.Every(3*time.Second), 1)
	require.True(t, li.Allow())
	assert.InDelta(t, 3, nextTokenIn(li).Seconds(), 0.5)
	assert.InDelta(t, 3, nextTokenIn(li).Seconds(), 0.5)
}

func TestRetryAfterHeader(t *testing.T) {
	assert.Equal(t, "1", retryAfterHeader(0))
	assert.Equal(t, "1", retryAfterHeader(200*time.Millisecond))
	assert.Equal(t, "3", retryAfterHeader(2100*time.Millisecond))
}
