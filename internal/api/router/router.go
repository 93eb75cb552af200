package router

import (
	"database/sql"
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/handlers"
	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
	onboardinghttp "github.com/5w1tchy/books-admin/internal/api/handlers/onboarding"
	"github.com/5w1tchy/books-admin/internal/api/middlewares"
	"github.com/redis/go-redis/v9"
)

// Deps carries everything the routes need. RDB may be nil in tests; the
// per-admin rate limit is then skipped.
type Deps struct {
	DB         *sql.DB
	RDB        *redis.Client
	Gate       *middlewares.Gate
	Categories handlers.CategoryLister
	Onboarding *onboardinghttp.Handler
	Admin      *admin.Handler
}

func Router(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Root (liveness)
	mux.HandleFunc("GET /", handlers.RootHandler)

	MountAdmin(mux, d)
	return mux
}
