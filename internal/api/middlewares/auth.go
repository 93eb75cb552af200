package middlewares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtutil "github.com/5w1tchy/books-admin/internal/security/jwt"
)

const userLookupTimeout = 2 * time.Second

// Gate authenticates bearer tokens and checks them against public.users.
type Gate struct {
	DB     *sql.DB
	Tokens *jwtutil.Verifier
}

func NewGate(db *sql.DB, tokens *jwtutil.Verifier) *Gate {
	return &Gate{DB: db, Tokens: tokens}
}

type principal struct {
	id   string
	role string
}

var (
	errNoAuthHeader  = errors.New("missing Authorization header")
	errBadAuthHeader = errors.New("invalid Authorization header")
	errBadToken      = errors.New("invalid token")
	errUnknownUser   = errors.New("user not found")
	errRevoked       = errors.New("token revoked")
	// errUserLookup means the users table could not be read; the token
	// may well be valid.
	errUserLookup = errors.New("user lookup failed")
)

// authenticate verifies the token and compares its version with the one
// stored for the user, so logging out everywhere revokes old tokens.
func (g *Gate) authenticate(r *http.Request) (principal, error) {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		return principal{}, errNoAuthHeader
	}
	tokenStr, err := bearer(raw)
	if err != nil {
		return principal{}, errBadAuthHeader
	}
	claims, err := g.Tokens.Parse(tokenStr)
	if err != nil {
		return principal{}, errBadToken
	}

	ctx, cancel := context.WithTimeout(r.Context(), userLookupTimeout)
	defer cancel()

	var (
		dbVer int
		role  string
	)
	err = g.DB.QueryRowContext(ctx,
		`SELECT COALESCE(token_version,1), role FROM public.users WHERE id = $1`,
		claims.Subject,
	).Scan(&dbVer, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return principal{}, errUnknownUser
	}
	if err != nil {
		return principal{}, fmt.Errorf("%w: %v", errUserLookup, err)
	}
	if claims.TokenVersion != dbVer {
		return principal{}, errRevoked
	}
	return principal{id: claims.Subject, role: role}, nil
}

func bearer(h string) (string, error) {
	if !strings.HasPrefix(h, "Bearer ") && !strings.HasPrefix(h, "bearer ") {
		return "", errors.New("no bearer")
	}
	tok := strings.TrimSpace(h[len("Bearer "):])
	if tok == "" {
		return "", errors.New("empty bearer")
	}
	return tok, nil
}
