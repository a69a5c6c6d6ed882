package sqlite

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds SQLite configuration.
type ClientConfig struct {
	Path        string
	BusyTimeout time.Duration
	PingTimeout time.Duration
}

// WithPath sets the database file path.
func WithPath(path string) ClientOption {
	return func(c *ClientConfig) {
		c.Path = path
	}
}

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.BusyTimeout = d
	}
}
