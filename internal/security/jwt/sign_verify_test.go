package jwtutil

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := NewVerifier(testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := v.Sign("admin-1", 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c, err := v.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Subject != "admin-1" || c.TokenVersion != 3 {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v, _ := NewVerifier(testSecret, 0)
	other, _ := NewVerifier(strings.Repeat("z", 32), 0)

	foreign, _ := other.Sign("admin-1", 1, time.Minute)
	if _, err := v.Parse(foreign); err == nil {
		t.Error("expected signature error")
	}

	expired, _ := v.Sign("admin-1", 1, -time.Minute)
	if _, err := v.Parse(expired); err == nil {
		t.Error("expected expiry error")
	}

	noSubject, _ := v.Sign("", 1, time.Minute)
	if _, err := v.Parse(noSubject); err == nil {
		t.Error("expected subject error")
	}
}

func TestNewVerifier_WeakSecret(t *testing.T) {
	if _, err := NewVerifier("short", 0); err != ErrWeakSecret {
		t.Fatalf("want ErrWeakSecret, got %v", err)
	}
}
