// Package admin serves the read side of the onboarding audit trail.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler struct {
	RDB *redis.Client
	Sto Store
}

// NewHandler builds the handler. rdb may be nil, which disables the
// stats cache.
func NewHandler(rdb *redis.Client, store Store) *Handler {
	return &Handler{RDB: rdb, Sto: store}
}

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

func validatePagination(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	return page, size
}

func intParam(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// timeParam parses an RFC3339 query value. An empty value is (nil, true).
func timeParam(r *http.Request, name string) (*time.Time, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
