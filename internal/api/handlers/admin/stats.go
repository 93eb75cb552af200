package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
	"github.com/5w1tchy/books-admin/internal/api/httpx"
)

const (
	StatsCacheKey = "admin:stats"
	StatsCacheTTL = 30 * time.Second
	statsWindow   = 24 * time.Hour
)

// GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s, ok := h.cachedStats(ctx); ok {
		httpx.WriteJSON(w, http.StatusOK, s)
		return
	}

	s, err := h.Sto.OnboardingStats(ctx, time.Now().Add(-statsWindow))
	if err != nil {
		log.Printf("[admin] stats: %v", err)
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "could not compute stats")
		return
	}
	h.cacheStats(ctx, s)
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) cachedStats(ctx context.Context) (Stats, bool) {
	var s Stats
	if h.RDB == nil {
		return s, false
	}
	raw, err := h.RDB.Get(ctx, StatsCacheKey).Bytes()
	if err != nil {
		return s, false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, false
	}
	return s, true
}

func (h *Handler) cacheStats(ctx context.Context, s Stats) {
	if h.RDB == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := h.RDB.Set(ctx, StatsCacheKey, raw, StatsCacheTTL).Err(); err != nil {
		log.Printf("[admin] stats cache: %v", err)
	}
}
