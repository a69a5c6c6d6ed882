package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewClientCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "econ.db")
	c, err := NewClient(WithPath(path))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer c.Close()

	if _, err := c.DB().Exec("CREATE TABLE t (x INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestNewClientRequiresPath(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without path")
	}
}

func TestNewClientBusyTimeoutOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "econ.db")
	c, err := NewClient(WithPath(path), WithBusyTimeout(250*time.Millisecond))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer c.Close()

	var ms int
	if err := c.DB().QueryRow("PRAGMA busy_timeout").Scan(&ms); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if ms != 250 {
		t.Fatalf("busy_timeout = %d, want 250", ms)
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{Path: "econ.db", BusyTimeout: 2 * time.Second})
	if !strings.HasPrefix(dsn, "file:econ.db?") || !strings.Contains(dsn, "busy_timeout%282000%29") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
}
