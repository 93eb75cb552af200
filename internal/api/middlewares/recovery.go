package middlewares

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
)

// Recovery turns a handler panic into a 500 problem. The wizard state of
// the caller is untouched; controllers only commit after a transition
// returns.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				rid := GetRequestID(r)
				if rid == "" {
					rid = "unknown"
				}
				log.Printf("[PANIC] RequestID=%s %s %s: %v\n%s",
					rid, r.Method, r.URL.Path, err, debug.Stack())

				apperr.Write(w, r, apperr.Problem{
					Status:    http.StatusInternalServerError,
					Title:     "Internal Server Error",
					RequestID: GetRequestID(r),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
