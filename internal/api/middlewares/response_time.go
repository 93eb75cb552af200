package middlewares

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

type rtWriter struct {
	http.ResponseWriter
	start       time.Time
	wroteHeader bool
	status      int
}

func (w *rtWriter) stamp() {
	if !w.wroteHeader {
		w.Header().Set("X-Response-Time", time.Since(w.start).String())
		w.wroteHeader = true
	}
}

func (w *rtWriter) WriteHeader(code int) {
	w.status = code
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *rtWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

// SlowThresholdFromEnv reads SLOW_REQUEST_MS (default 2000, 0 disables).
func SlowThresholdFromEnv() time.Duration {
	if v := os.Getenv("SLOW_REQUEST_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return 2 * time.Second
}

// ResponseTime stamps X-Response-Time and logs requests slower than slow.
// Submissions wait on the database, so this is where a stuck insert shows.
func ResponseTime(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &rtWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
			next.ServeHTTP(rw, r)

			if !rw.wroteHeader {
				rw.Header().Set("X-Response-Time", time.Since(rw.start).String())
			}
			if took := time.Since(rw.start); slow > 0 && took > slow {
				log.Printf("[slow] %s %s -> %d in %s (rid=%s)", r.Method, r.URL.Path, rw.status, took, GetRequestID(r))
			}
		})
	}
}
