package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Client owns a single-file SQLite database handle.
type Client struct {
	db   *sql.DB
	path string
}

// NewClient opens (creating if absent) the SQLite file.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &ClientConfig{
		BusyTimeout: 5 * time.Second,
		PingTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// One writer; also keeps pragmas applied to the only connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	return &Client{db: db, path: cfg.Path}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Path returns the database file path.
func (c *Client) Path() string {
	return c.path
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database handle.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func buildDSN(cfg ClientConfig) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + cfg.Path + "?" + q.Encode()
}
