package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgconn"
	pgconnv5 "github.com/jackc/pgx/v5/pgconn"
)

// constraintField maps catalog constraints to the wizard field they guard.
var constraintField = map[string]string{
	"books_slug_key":                      "code",
	"books_coda_key":                      "code",
	"books_isbn_key":                      "isbn",
	"book_categories_category_id_fkey":    "category",
	"book_copies_book_id_copy_number_key": "copies",
	"book_copies_location_check":          "copies",
}

// columnField is checked in order against the error detail; longer
// column names come first so "copy_number" wins over "id".
var columnField = []struct{ column, field string }{
	{"category_id", "category"},
	{"copy_number", "copies"},
	{"location", "copies"},
	{"book_id", "book_id"},
	{"coda", "code"},
	{"slug", "code"},
	{"isbn", "isbn"},
	{"title", "title"},
	{"id", "id"},
}

// pgFields is the part of a server error both pgconn generations expose.
type pgFields struct {
	Code, Message, Detail, ConstraintName, ColumnName string
}

func asPG(err error) (pgFields, bool) {
	var v5 *pgconnv5.PgError
	if errors.As(err, &v5) {
		return pgFields{v5.Code, v5.Message, v5.Detail, v5.ConstraintName, v5.ColumnName}, true
	}
	var v1 *pgconn.PgError
	if errors.As(err, &v1) {
		return pgFields{v1.Code, v1.Message, v1.Detail, v1.ConstraintName, v1.ColumnName}, true
	}
	return pgFields{}, false
}

func (pg pgFields) field() string {
	if f, ok := constraintField[pg.ConstraintName]; ok {
		return f
	}
	for _, c := range columnField {
		if strings.Contains(pg.Detail, c.column) {
			return c.field
		}
	}
	return pg.ColumnName
}

// sqlState describes how one SQLSTATE is surfaced. An empty code means
// the problem carries no field error.
type sqlState struct {
	status    int
	code      string
	message   string
	fallback  string
	retryable bool
}

var sqlStates = map[string]sqlState{
	"23505": {http.StatusConflict, "unique", "value already exists", "resource", false},
	"23503": {http.StatusConflict, "fk", "resource is referenced by other records", "resource", false},
	"23502": {http.StatusBadRequest, "not_null", "required field is missing", "field", false},
	"23514": {http.StatusUnprocessableEntity, "check", "constraint failed", "field", false},
	"22P02": {http.StatusBadRequest, "invalid", "invalid format", "id", false},
	"22001": {http.StatusBadRequest, "too_long", "value is too long", "field", false},
	"40001": {http.StatusConflict, "", "transaction conflict, please retry", "", true},
	"40P01": {http.StatusConflict, "", "deadlock detected, please retry", "", true},
}

// FromPG maps a server error from either pgconn generation to a Problem.
// Unknown SQLSTATEs become a bare 500 so server messages do not leak.
func FromPG(err error) (Problem, bool) {
	pg, ok := asPG(err)
	if !ok {
		return Problem{}, false
	}

	st, known := sqlStates[pg.Code]
	if !known {
		return Problem{Status: http.StatusInternalServerError, Title: "Database error"}, true
	}

	p := Problem{Status: st.status, Title: http.StatusText(st.status), Retryable: st.retryable}
	if st.code == "" {
		p.Detail = st.message
		return p, true
	}
	field := pg.field()
	if field == "" {
		field = st.fallback
	}
	p.FieldErrors = []FieldError{{Field: field, Code: st.code, Message: st.message}}
	return p, true
}
