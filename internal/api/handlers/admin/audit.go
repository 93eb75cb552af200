package admin

import (
	"log"
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/apperr"
	"github.com/5w1tchy/books-admin/internal/api/httpx"
)

type auditPage struct {
	Data  []AuditRow `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

// GET /admin/audit
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := validatePagination(intParam(r, "page"), intParam(r, "size"))

	since, ok1 := timeParam(r, "since")
	until, ok2 := timeParam(r, "until")
	if !ok1 || !ok2 {
		apperr.Write(w, r, apperr.Problem{
			Status:      http.StatusBadRequest,
			FieldErrors: []apperr.FieldError{{Field: "since/until", Code: "invalid", Message: "use RFC3339 timestamps"}},
		})
		return
	}
	if since != nil && until != nil && until.Before(*since) {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "Bad Request", "until is before since")
		return
	}

	f := AuditFilter{
		ActorID:  q.Get("actor_id"),
		TargetID: q.Get("target_id"),
		Action:   q.Get("action"),
		Since:    since,
		Until:    until,
		Page:     page,
		Size:     size,
	}
	items, total, err := h.Sto.ListAudit(r.Context(), f)
	if err != nil {
		log.Printf("[admin] list audit: %v", err)
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "Internal Server Error", "could not list audit rows")
		return
	}
	if items == nil {
		items = []AuditRow{}
	}
	httpx.WriteJSON(w, http.StatusOK, auditPage{Data: items, Total: total, Page: page, Size: size})
}
