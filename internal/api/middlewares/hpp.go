package middlewares

import (
	"net/http"
	"slices"
)

// AdminQueryParams are the query parameters the admin routes read.
var AdminQueryParams = []string{
	"q", "limit", "page", "size",
	"action", "actor_id", "target_id", "since", "until",
}

// HPP guards against HTTP parameter pollution on query strings: repeated
// parameters collapse to their first value and unknown ones are dropped.
// Request bodies are JSON or multipart and are decoded strictly by the
// handlers.
func HPP(whitelist []string) func(http.Handler) http.Handler {
	allowed := slices.Clone(whitelist)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				filterQueryParams(r, allowed)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func filterQueryParams(r *http.Request, whitelist []string) {
	query := r.URL.Query()
	for k, v := range query {
		if !slices.Contains(whitelist, k) {
			query.Del(k)
			continue
		}
		if len(v) > 1 {
			query.Set(k, v[0])
		}
	}
	r.URL.RawQuery = query.Encode()
}
