// Package jwtutil verifies the admin console's access tokens.
package jwtutil

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the access token issued by the account service. tv is
// bumped server-side to revoke every outstanding token of a user.
type AccessClaims struct {
	TokenVersion int `json:"tv"`
	jwt.RegisteredClaims
}

const minSecretLen = 32

var ErrWeakSecret = errors.New("AUTH_JWT_SECRET must be at least 32 characters")

// Verifier checks HS256 access tokens against a shared secret.
type Verifier struct {
	secret []byte
	skew   time.Duration
}

func NewVerifier(secret string, skew time.Duration) (*Verifier, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	return &Verifier{secret: []byte(secret), skew: skew}, nil
}

// VerifierFromEnv reads AUTH_JWT_SECRET and AUTH_CLOCK_SKEW_SEC (default 60).
func VerifierFromEnv() (*Verifier, error) {
	skew := 60 * time.Second
	if v := os.Getenv("AUTH_CLOCK_SKEW_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skew = time.Duration(n) * time.Second
		}
	}
	return NewVerifier(os.Getenv("AUTH_JWT_SECRET"), skew)
}

// Parse verifies the signature, the expiry (with leeway) and the subject.
func (v *Verifier) Parse(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(jwt.WithLeeway(v.skew), jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Sign issues an access token. Used by ops tooling and tests; end users get
// their tokens from the account service.
func (v *Verifier) Sign(userID string, tokenVersion int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
