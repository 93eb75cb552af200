package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type fixedCategories struct {
	names []string
	err   error
}

func (f fixedCategories) Categories(context.Context) ([]string, error) { return f.names, f.err }

func TestCategoriesHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	CategoriesHandler(fixedCategories{names: []string{"Ciencia", "Historia"}})(rec, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count int      `json:"count"`
		Data  []string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || body.Data[1] != "Historia" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCategoriesHandler_Error(t *testing.T) {
	rec := httptest.NewRecorder()
	CategoriesHandler(fixedCategories{err: errors.New("down")})(rec, httptest.NewRequest(http.MethodGet, "/admin/categories", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthorSuggestHandler(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT name FROM authors`)).
		WithArgs("Gar%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Gabriel García Márquez"))

	rec := httptest.NewRecorder()
	AuthorSuggestHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/admin/authors?q=Gar", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	AuthorSuggestHandler(db)(rec, httptest.NewRequest(http.MethodGet, "/admin/authors", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("empty query status = %d", rec.Code)
	}
}
