package cache

import (
	"context"
	"testing"
	"time"

	"EconDash/internal/domain/models"
)

func TestMemoryCacheFreshness(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	c := NewMemoryCache(24 * time.Hour).WithClock(func() time.Time { return now })

	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("empty cache must miss")
	}

	res := models.Result{Status: models.StatusOK, Rows: []models.YearlyAggregate{{Year: 2020}}, ComputedAt: t0}
	if err := c.Set(ctx, res); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = t0.Add(23 * time.Hour)
	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("expected hit within ttl, ok=%v err=%v", ok, err)
	}
	if len(got.Rows) != 1 || got.Rows[0].Year != 2020 {
		t.Fatalf("unexpected cached result %+v", got)
	}

	now = t0.Add(24 * time.Hour)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss once ttl elapsed")
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)
	_ = c.Set(ctx, models.Result{Status: models.StatusOK, ComputedAt: time.Now()})
	if _, ok, _ := c.Get(ctx); !ok {
		t.Fatalf("expected hit")
	}
	_ = c.Invalidate(ctx)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss after Invalidate")
	}
}

func TestMemoryCacheZeroTTLDisables(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	_ = c.Set(ctx, models.Result{Status: models.StatusOK, ComputedAt: time.Now()})
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("zero ttl must never hit")
	}
}
