package middlewares

import (
	"errors"
	"log"
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
)

// RequireRole authenticates the caller and requires the given role.
func (g *Gate) RequireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := g.authenticate(r)
		if errors.Is(err, errUserLookup) {
			log.Printf("[auth] %s %s: %v", r.Method, r.URL.Path, err)
			apperr.Write(w, r, apperr.Problem{
				Status:    http.StatusServiceUnavailable,
				Title:     "Service Unavailable",
				Detail:    "authentication is temporarily unavailable",
				Retryable: true,
			})
			return
		}
		if err != nil {
			apperr.WriteStatus(w, r, http.StatusUnauthorized, "Unauthorized", err.Error())
			return
		}
		if p.role != role {
			log.Printf("[auth] user %s with role %q denied %s %s", p.id, p.role, r.Method, r.URL.Path)
			apperr.WriteStatus(w, r, http.StatusForbidden, "Forbidden", "requires role "+role)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), p.id)))
	})
}

// Admin is shorthand for RequireRole("admin", ...).
func (g *Gate) Admin(next http.Handler) http.Handler {
	return g.RequireRole("admin", next)
}
