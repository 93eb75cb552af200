package onboarding

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/5w1tchy/books-admin/internal/validate"
)

const (
	DefaultMaxCopies = 100
	maxTitleLen      = 200
	maxTextLen       = 200
	maxDescLen       = 10000
)

var codeRE = regexp.MustCompile(`^[a-z0-9-]{3,64}$`)

// BookDraft is the in-progress book record. Edition and CopyCount are
// kept as plain ints so a half-filled form can round-trip through JSON.
type BookDraft struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	ISBN        string `json:"isbn"`
	Edition     int    `json:"edition"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
	CopyCount   int    `json:"copy_count"`
}

// Rules are fixed for the lifetime of one wizard.
type Rules struct {
	Categories []string `json:"categories"`
	MaxCopies  int      `json:"max_copies"`
}

// CategoryProvider supplies the category set a wizard validates against.
type CategoryProvider interface {
	Categories(ctx context.Context) ([]string, error)
}

// LoadRules reads the category set once; the result is fixed for the
// lifetime of a wizard.
func LoadRules(ctx context.Context, p CategoryProvider, maxCopies int) (Rules, error) {
	cats, err := p.Categories(ctx)
	if err != nil {
		return Rules{}, fmt.Errorf("load categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return Rules{Categories: cats, MaxCopies: maxCopies}, nil
}

func (r Rules) maxCopies() int {
	if r.MaxCopies <= 0 {
		return DefaultMaxCopies
	}
	return r.MaxCopies
}

// canonicalCategory returns the provider's spelling of name.
func (r Rules) canonicalCategory(name string) (string, bool) {
	for _, c := range r.Categories {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return c, true
		}
	}
	return "", false
}

// ValidateDraft sanitizes d and checks every field, returning all field
// errors at once. The returned draft is the normalized form.
func ValidateDraft(d BookDraft, rules Rules) (BookDraft, error) {
	d = sanitizeDraft(d)
	var fe []FieldError

	required := []struct {
		field, value string
	}{
		{"code", d.Code},
		{"title", d.Title},
		{"author", d.Author},
		{"category", d.Category},
		{"isbn", d.ISBN},
		{"publisher", d.Publisher},
		{"description", d.Description},
		{"cover_image", d.CoverImage},
	}
	for _, f := range required {
		if f.value == "" {
			fe = append(fe, FieldError{Field: f.field, Code: "required", Message: f.field + " is required"})
		}
	}

	if d.Code != "" && !codeRE.MatchString(d.Code) {
		fe = append(fe, FieldError{Field: "code", Code: "invalid", Message: "code must match ^[a-z0-9-]{3,64}$"})
	}
	if utf8.RuneCountInString(d.Title) > maxTitleLen {
		fe = append(fe, FieldError{Field: "title", Code: "too_long", Message: "title must be <= 200 chars"})
	}
	if utf8.RuneCountInString(d.Author) > maxTextLen {
		fe = append(fe, FieldError{Field: "author", Code: "too_long", Message: "author must be <= 200 chars"})
	}
	if utf8.RuneCountInString(d.Publisher) > maxTextLen {
		fe = append(fe, FieldError{Field: "publisher", Code: "too_long", Message: "publisher must be <= 200 chars"})
	}
	if utf8.RuneCountInString(d.Description) > maxDescLen {
		fe = append(fe, FieldError{Field: "description", Code: "too_long", Message: "description too long"})
	}

	if d.Category != "" {
		if c, ok := rules.canonicalCategory(d.Category); ok {
			d.Category = c
		} else {
			fe = append(fe, FieldError{Field: "category", Code: "unknown", Message: "category is not in the catalog"})
		}
	}

	if d.ISBN != "" {
		if isbn, ok := NormalizeISBN(d.ISBN); ok {
			d.ISBN = isbn
		} else {
			fe = append(fe, FieldError{Field: "isbn", Code: "invalid", Message: "isbn must be a valid ISBN-10 or ISBN-13"})
		}
	}

	if d.Edition < 1 {
		fe = append(fe, FieldError{Field: "edition", Code: "invalid", Message: "edition must be a positive integer"})
	}
	if limit := rules.maxCopies(); d.CopyCount < 1 || d.CopyCount > limit {
		fe = append(fe, FieldError{Field: "copy_count", Code: "out_of_range", Message: "copy_count must be between 1 and " + strconv.Itoa(limit)})
	}

	if len(fe) > 0 {
		return d, &ValidationError{Fields: fe}
	}
	return d, nil
}

func sanitizeDraft(d BookDraft) BookDraft {
	d.Code = strings.ToLower(validate.SanitizeText(d.Code))
	d.Title = validate.SanitizeText(d.Title)
	d.Author = validate.SanitizeText(d.Author)
	d.Category = validate.SanitizeText(d.Category)
	d.ISBN = validate.SanitizeText(d.ISBN)
	d.Publisher = validate.SanitizeText(d.Publisher)
	d.Description = strings.TrimSpace(strings.ReplaceAll(d.Description, "\x00", ""))
	d.CoverImage = strings.TrimSpace(d.CoverImage)
	return d
}
