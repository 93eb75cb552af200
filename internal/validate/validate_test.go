package validate

import "testing"

func TestSanitizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Cien   años\tde\nsoledad ", "Cien años de soledad"},
		{"a\x00b", "ab"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
