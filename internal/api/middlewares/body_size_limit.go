package middlewares

import (
	"net/http"
	"os"
	"strconv"
)

// DefaultBodyLimit leaves room for a 10MB cover upload plus multipart framing.
const DefaultBodyLimit int64 = 11 << 20

// BodyLimitFromEnv reads MAX_BODY_SIZE in bytes.
func BodyLimitFromEnv() int64 {
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultBodyLimit
}

// BodySizeLimit caps request bodies of POST, PUT and PATCH. Handlers see a
// *http.MaxBytesError once the limit is crossed.
func BodySizeLimit(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
