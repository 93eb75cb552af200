package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func tag(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Order", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestApplyMiddleware_FirstIsOutermost(t *testing.T) {
	h := applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		tag("a"), tag("b"), tag("c"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(rec.Header().Values("X-Order"), ","); got != "a,b,c" {
		t.Fatalf("got order %q", got)
	}
}

func TestNewRedis_RequiresConfig(t *testing.T) {
	t.Setenv("UPSTASH_REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	if _, err := newRedis(); err == nil {
		t.Fatal("expected missing config error")
	}

	t.Setenv("UPSTASH_REDIS_URL", "::not a url")
	if _, err := newRedis(); err == nil {
		t.Fatal("expected parse error")
	}

	t.Setenv("UPSTASH_REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_INSECURE", "1")
	c, err := newRedis()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Options().TLSConfig != nil {
		t.Error("REDIS_INSECURE must disable TLS")
	}
}
