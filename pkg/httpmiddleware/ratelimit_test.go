package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 3, Window: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := doRequest(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	require.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:9999").Code, "same IP, other port")
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1234").Code, "other IP has its own budget")
}

func TestRateLimit_WindowResets(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: 10 * time.Millisecond})

	now := time.Now()
	_, _, allowed := rl.allow("k", now)
	require.True(t, allowed)
	_, _, allowed = rl.allow("k", now)
	require.False(t, allowed)

	_, _, allowed = rl.allow("k", now.Add(20*time.Millisecond))
	assert.True(t, allowed, "a new window grants a fresh budget")
}

func TestRateLimit_ForwardedForKey(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Millisecond})

	now := time.Now()
	rl.allow("a", now)
	rl.allow("b", now)
	require.Len(t, rl.buckets, 2)

	rl.cleanup(now.Add(time.Second))
	assert.Empty(t, rl.buckets)
}
