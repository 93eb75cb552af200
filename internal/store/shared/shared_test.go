package shared

import "testing"

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Gabriel García Márquez":   "gabriel-garcia-marquez",
		"  Cien años, de soledad ": "cien-anos-de-soledad",
		"O'Brien":                  "obrien",
		"--":                       "n-a",
		"":                         "n-a",
		"Sala_A / Estante 3":       "sala-a-estante-3",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q; want %q", in, got, want)
		}
	}
}
