package router

import (
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/handlers"
	"github.com/5w1tchy/books-admin/internal/api/middlewares"
)

// MountAdmin wires all /admin/* endpoints behind the admin role gate.
func MountAdmin(mux *http.ServeMux, d Deps) {
	limit := func(next http.Handler) http.Handler { return next }
	if d.RDB != nil {
		// 10 wizard events per second per admin, bursts of 30
		tb := middlewares.NewRedisTokenBucket(d.RDB, 10, 30, middlewares.PerUserKey("rl:admin"))
		limit = tb.Middleware
	}
	gate := func(h http.HandlerFunc) http.Handler {
		return d.Gate.Admin(limit(h))
	}

	// Lookups for the draft form
	mux.Handle("GET /admin/categories", gate(handlers.CategoriesHandler(d.Categories)))
	mux.Handle("GET /admin/authors", gate(handlers.AuthorSuggestHandler(d.DB)))

	// Onboarding wizard
	ob := d.Onboarding
	mux.Handle("POST /admin/onboarding", gate(ob.Start))
	mux.Handle("GET /admin/onboarding", gate(ob.Current))
	mux.Handle("DELETE /admin/onboarding", gate(ob.Teardown))
	mux.Handle("POST /admin/onboarding/events", gate(ob.Dispatch))
	mux.Handle("PUT /admin/onboarding/cover-preview", gate(ob.CoverPreview))

	// Audit & stats
	mux.Handle("GET /admin/audit", gate(d.Admin.ListAudit))
	mux.Handle("GET /admin/stats", gate(d.Admin.Stats))
}
