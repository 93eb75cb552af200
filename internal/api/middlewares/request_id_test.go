package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mw "github.com/5w1tchy/books-admin/internal/api/middlewares"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"missing", "", false},
		{"well formed", "console-7f3a.2", true},
		{"bad characters", "invalid@#$%id", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = mw.GetRequestID(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/admin/onboarding", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err, "minted id %q", seen)
		})
	}
}

func TestGetRequestID_FallsBackToHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, mw.GetRequestID(req))
	req.Header.Set("X-Request-ID", "from-proxy")
	assert.Equal(t, "from-proxy", mw.GetRequestID(req))
}
