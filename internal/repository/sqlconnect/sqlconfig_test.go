package sqlconnect

import (
	"context"
	"testing"
)

func TestConnectDB_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := ConnectDB(context.Background()); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestPoolSize(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	if got := poolSize(); got != 10 {
		t.Errorf("default: got %d", got)
	}
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	if got := poolSize(); got != 25 {
		t.Errorf("override: got %d", got)
	}
	t.Setenv("DB_MAX_OPEN_CONNS", "zero")
	if got := poolSize(); got != 10 {
		t.Errorf("garbage: got %d", got)
	}
}
