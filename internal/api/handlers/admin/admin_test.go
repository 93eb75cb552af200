package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeStore struct {
	stats     Stats
	gotSince  time.Time
	rows      []AuditRow
	gotFilter AuditFilter
	err       error
}

func (f *fakeStore) OnboardingStats(_ context.Context, since time.Time) (Stats, error) {
	f.gotSince = since
	return f.stats, f.err
}
func (f *fakeStore) InsertAuditBatch(context.Context, []AuditEntry) error { return f.err }
func (f *fakeStore) ListAudit(_ context.Context, flt AuditFilter) ([]AuditRow, int, error) {
	f.gotFilter = flt
	return f.rows, len(f.rows), f.err
}

func TestListAudit(t *testing.T) {
	sto := &fakeStore{rows: []AuditRow{{ID: 1, AdminID: "admin-1", Action: ActionBookOnboarded}}}
	h := NewHandler(nil, sto)

	req := httptest.NewRequest(http.MethodGet, "/admin/audit?action=book.onboarded&page=2&size=500&since=2026-01-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.ListAudit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if sto.gotFilter.Action != ActionBookOnboarded || sto.gotFilter.Page != 2 || sto.gotFilter.Size != 25 {
		t.Errorf("unexpected filter: %+v", sto.gotFilter)
	}
	if sto.gotFilter.Since == nil || sto.gotFilter.Until != nil {
		t.Errorf("unexpected time bounds: %+v", sto.gotFilter)
	}
	var body struct {
		Total int        `json:"total"`
		Data  []AuditRow `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 || body.Data[0].AdminID != "admin-1" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestListAudit_Errors(t *testing.T) {
	h := NewHandler(nil, &fakeStore{})
	for _, q := range []string{
		"since=2026-02-01T00:00:00Z&until=2026-01-01T00:00:00Z",
		"since=yesterday",
	} {
		rec := httptest.NewRecorder()
		h.ListAudit(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: want 400, got %d", q, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("%s: want problem, got %q", q, ct)
		}
	}

	h = NewHandler(nil, &fakeStore{err: errors.New("db down")})
	rec := httptest.NewRecorder()
	h.ListAudit(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("want 500, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	want := Stats{BooksTotal: 12, CopiesTotal: 40, Onboarded: 3, Failed: 1}
	sto := &fakeStore{stats: want}
	h := NewHandler(nil, sto)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var got Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(sto.gotSince); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("stats window starts %v ago", d)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	h = NewHandler(nil, &fakeStore{err: errors.New("db down")})
	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("want 500, got %d", rec.Code)
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct{ page, size, wantPage, wantSize int }{
		{0, 0, 1, 25},
		{3, 50, 3, 50},
		{-1, 201, 1, 25},
		{1, 200, 1, 200},
	}
	for _, tt := range tests {
		p, s := validatePagination(tt.page, tt.size)
		if p != tt.wantPage || s != tt.wantSize {
			t.Errorf("validatePagination(%d,%d) = %d,%d", tt.page, tt.size, p, s)
		}
	}
}
