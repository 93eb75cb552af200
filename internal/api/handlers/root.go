package handlers

import (
	"net/http"

	"github.com/5w1tchy/books-admin/internal/api/httpx"
)

// RootHandler answers liveness probes.
func RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httpx.ErrorJSON(w, http.StatusNotFound, "not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "books-admin"})
}
