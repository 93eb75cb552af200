package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"
)

var testRules = Rules{Categories: []string{"Ficción", "Historia", "Ciencia"}, MaxCopies: 10}

func validDraft(copies int) BookDraft {
	return BookDraft{
		Code:        "lib-001",
		Title:       "Cien años de soledad",
		Author:      "Gabriel García Márquez",
		Category:    "Ficción",
		ISBN:        "978-0-306-40615-7",
		Edition:     1,
		Publisher:   "Sudamericana",
		Description: "Novela",
		CoverImage:  "covers/lib-001.webp",
		CopyCount:   copies,
	}
}

func fieldCodes(err error) map[string]string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Field] = f.Code
	}
	return out
}

func TestValidateDraft_OK(t *testing.T) {
	in := validDraft(3)
	in.Title = "  Cien   años de soledad "
	in.Category = "ficción"
	in.Code = "LIB-001"

	got, err := ValidateDraft(in, testRules)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Title != "Cien años de soledad" {
		t.Errorf("title not sanitized: %q", got.Title)
	}
	if got.Category != "Ficción" {
		t.Errorf("category not canonical: %q", got.Category)
	}
	if got.ISBN != "9780306406157" {
		t.Errorf("isbn not cleaned: %q", got.ISBN)
	}
	if got.Code != "lib-001" {
		t.Errorf("code not lowercased: %q", got.Code)
	}
}

func TestValidateDraft_CollectsAllFieldErrors(t *testing.T) {
	_, err := ValidateDraft(BookDraft{}, testRules)
	codes := fieldCodes(err)
	if codes == nil {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, f := range []string{"code", "title", "author", "category", "isbn", "publisher", "description", "cover_image", "edition", "copy_count"} {
		if _, ok := codes[f]; !ok {
			t.Errorf("missing field error for %s", f)
		}
	}
}

func TestValidateDraft_Rules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*BookDraft)
		field string
		code  string
	}{
		{"unknown category", func(d *BookDraft) { d.Category = "Poesía" }, "category", "unknown"},
		{"bad isbn checksum", func(d *BookDraft) { d.ISBN = "978-0-306-40615-8" }, "isbn", "invalid"},
		{"zero edition", func(d *BookDraft) { d.Edition = 0 }, "edition", "invalid"},
		{"negative copies", func(d *BookDraft) { d.CopyCount = -1 }, "copy_count", "out_of_range"},
		{"too many copies", func(d *BookDraft) { d.CopyCount = 11 }, "copy_count", "out_of_range"},
		{"bad code", func(d *BookDraft) { d.Code = "a b" }, "code", "invalid"},
		{"long title", func(d *BookDraft) { d.Title = strings.Repeat("x", 201) }, "title", "too_long"},
		{"no image", func(d *BookDraft) { d.CoverImage = "  " }, "cover_image", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft(2)
			tt.edit(&d)
			_, err := ValidateDraft(d, testRules)
			codes := fieldCodes(err)
			if codes[tt.field] != tt.code {
				t.Fatalf("want %s=%s, got %v (err=%v)", tt.field, tt.code, codes, err)
			}
		})
	}
}

func TestValidateDraft_DefaultMaxCopies(t *testing.T) {
	d := validDraft(DefaultMaxCopies)
	if _, err := ValidateDraft(d, Rules{Categories: testRules.Categories}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	d.CopyCount = DefaultMaxCopies + 1
	if _, err := ValidateDraft(d, Rules{Categories: testRules.Categories}); err == nil {
		t.Fatal("expected copy_count error")
	}
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"978-0-306-40615-7", "9780306406157", true},
		{"0-306-40615-2", "0306406152", true},
		{"0-8044-2957-x", "080442957X", true},
		{"0 306 40615 2", "0306406152", true},
		{"0-306-40615-3", "0306406153", false},
		{"977-0-306-40615-7", "9770306406157", false},
		{"X-306-40615-2", "X306406152", false},
		{"12345", "12345", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeISBN(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeISBN(%q) = %q,%v; want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type staticCategories []string

func (s staticCategories) Categories(context.Context) ([]string, error) {
	if s == nil {
		return nil, errors.New("catalog unavailable")
	}
	return s, nil
}

func TestLoadRules(t *testing.T) {
	r, err := LoadRules(context.Background(), staticCategories{"Ficción"}, 5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(r.Categories) != 1 || r.MaxCopies != 5 {
		t.Fatalf("unexpected rules: %+v", r)
	}

	if _, err := LoadRules(context.Background(), staticCategories(nil), 5); err == nil {
		t.Fatal("expected provider error")
	}
}
