package cache

import (
	"context"
	"sync"
	"time"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
)

// MemoryCache keeps the last result in process. An entry is fresh while
// now - ComputedAt < ttl; a ttl of zero disables caching.
type MemoryCache struct {
	mu    sync.RWMutex
	res   models.Result
	valid bool
	ttl   time.Duration
	now   func() time.Time
}

var _ drepo.ResultCache = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

// WithClock replaces the time source (tests).
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context) (models.Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || c.ttl <= 0 {
		return models.Result{}, false, nil
	}
	if c.now().Sub(c.res.ComputedAt) >= c.ttl {
		return models.Result{}, false, nil
	}
	return c.res, true, nil
}

func (c *MemoryCache) Set(_ context.Context, r models.Result) error {
	c.mu.Lock()
	c.res = r
	c.valid = true
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.res = models.Result{}
	c.valid = false
	c.mu.Unlock()
	return nil
}
