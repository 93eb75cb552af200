package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerIPKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:80", "rl:ip:203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:80", "rl:ip:198.51.100.2"},
		{"remote addr", nil, "192.0.2.9:5555", "rl:ip:192.0.2.9"},
		{"unparsable remote", nil, "pipe", "rl:ip:pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, PerIPKey("rl")(r))
		})
	}
}

func TestPerUserKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.9:5555"
	assert.Equal(t, "rl:ip:192.0.2.9", PerUserKey("rl")(r))

	r = r.WithContext(WithUserID(r.Context(), "admin-7"))
	assert.Equal(t, "rl:user:admin-7", PerUserKey("rl")(r))
}

type scriptedLimiter struct {
	d   decision
	err error
	got string
}

func (s *scriptedLimiter) policy() string { return "test" }
func (s *scriptedLimiter) capacity() int  { return 5 }
func (s *scriptedLimiter) take(_ context.Context, key string) (decision, error) {
	s.got = key
	return s.d, s.err
}

func serve(l limiter) *httptest.ResponseRecorder {
	h := limit(l, PerIPKey("rl"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/admin/onboarding", nil)
	r.RemoteAddr = "192.0.2.1:1000"
	h.ServeHTTP(rec, r)
	return rec
}

func TestLimit_Allowed(t *testing.T) {
	l := &scriptedLimiter{d: decision{allowed: true, remaining: 4}}
	rec := serve(l)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "rl:ip:192.0.2.1", l.got)
	assert.Equal(t, "test", rec.Header().Get("X-RateLimit-Policy"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestLimit_Blocked(t *testing.T) {
	rec := serve(&scriptedLimiter{d: decision{remaining: -2, retry: 1500 * time.Millisecond}})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), `"retryable":true`)
}

func TestLimit_BlockedRetryAtLeastOneSecond(t *testing.T) {
	rec := serve(&scriptedLimiter{d: decision{}})
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestLimit_FailsOpen(t *testing.T) {
	rec := serve(&scriptedLimiter{err: errors.New("dial tcp: connection refused")})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Policy"))
}
