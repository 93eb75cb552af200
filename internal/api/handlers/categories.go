package handlers

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/5w1tchy/books-admin/internal/api/httpx"
	storebooks "github.com/5w1tchy/books-admin/internal/store/books"
)

// CategoryLister is satisfied by *storebooks.Catalog.
type CategoryLister interface {
	Categories(ctx context.Context) ([]string, error)
}

// GET /admin/categories
func CategoriesHandler(cats CategoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := cats.Categories(r.Context())
		if err != nil {
			log.Printf("[categories] %v", err)
			httpx.ErrorJSON(w, http.StatusInternalServerError, "DB error")
			return
		}
		httpx.OKList(w, out)
	}
}

// GET /admin/authors?q=gar&limit=10
func AuthorSuggestHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			httpx.OKList(w, []string{})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out, err := storebooks.GetAuthorsByPrefix(r.Context(), db, q, limit)
		if err != nil {
			log.Printf("[authors] %v", err)
			httpx.ErrorJSON(w, http.StatusInternalServerError, "DB error")
			return
		}
		httpx.OKList(w, out)
	}
}
