package usecase

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"EconDash/internal/domain/models"
	"EconDash/internal/repository"
	"EconDash/internal/service/cache"
	"EconDash/internal/service/fred"
	pkgsqlite "EconDash/pkg/sqlite"
)

type fakeFetcher struct {
	mu     sync.Mutex
	series map[models.Indicator][]models.RawObservation
	err    error
	calls  int
}

func (f *fakeFetcher) FetchSeries(ctx context.Context, id string) ([]models.RawObservation, error) {
	all, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for ind, obs := range all {
		if ind.SeriesID() == id {
			return obs, nil
		}
	}
	return nil, nil
}

func (f *fakeFetcher) FetchAll(context.Context) (map[models.Indicator][]models.RawObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

type fakePublisher struct {
	got []models.Result
	err error
}

func (p *fakePublisher) PublishRefresh(_ context.Context, r models.Result) error {
	p.got = append(p.got, r)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type countingMetrics struct {
	nopMetrics
	runs      map[models.FailureKind]int
	cacheHits int
}

func (m *countingMetrics) RecordRun(_ models.Status, k models.FailureKind) {
	if m.runs == nil {
		m.runs = map[models.FailureKind]int{}
	}
	m.runs[k]++
}

func (m *countingMetrics) RecordCacheHit() { m.cacheHits++ }

func exampleSeries() map[models.Indicator][]models.RawObservation {
	return map[models.Indicator][]models.RawObservation{
		models.IndicatorGDP:          {obs(d(2020, 1), 100), obs(d(2020, 7), 110), obs(d(2021, 1), 120)},
		models.IndicatorCPI:          {obs(d(2020, 1), 10), obs(d(2020, 7), 12), obs(d(2021, 1), 13)},
		models.IndicatorUnemployment: {obs(d(2020, 1), 5), obs(d(2020, 7), 6), missing(d(2021, 1))},
	}
}

func newStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	cli, err := pkgsqlite.NewClient(pkgsqlite.WithPath(filepath.Join(t.TempDir(), "econ.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s, err := repository.NewSQLiteStore(cli, "econ_data", nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPipelineLoadComputesYearlyMeans(t *testing.T) {
	f := &fakeFetcher{series: exampleSeries()}
	pub := &fakePublisher{}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil, WithPublisher(pub))

	res := p.Load(context.Background())
	if res.Status != models.StatusOK || res.Cached || res.RunID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %+v, want only 2020", res.Rows)
	}
	a := res.Rows[0]
	if a.Year != 2020 || math.Abs(a.GDP-105) > 1e-9 || math.Abs(a.CPI-11) > 1e-9 || math.Abs(a.Unemployment-5.5) > 1e-9 {
		t.Fatalf("unexpected aggregate %+v", a)
	}
	if len(pub.got) != 1 || pub.got[0].RunID != res.RunID {
		t.Fatalf("expected one refresh event for run %s, got %+v", res.RunID, pub.got)
	}
}

func TestPipelineServesFromCache(t *testing.T) {
	f := &fakeFetcher{series: exampleSeries()}
	m := &countingMetrics{}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil, WithMetrics(m))

	first := p.Load(context.Background())
	second := p.Load(context.Background())

	if f.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", f.calls)
	}
	if !second.Cached || second.RunID != first.RunID {
		t.Fatalf("second load must be the cached first result: %+v", second)
	}
	if m.cacheHits != 1 {
		t.Fatalf("cache hits = %d", m.cacheHits)
	}

	refreshed := p.Refresh(context.Background())
	if f.calls != 2 || refreshed.Cached || refreshed.RunID == first.RunID {
		t.Fatalf("Refresh must run again: calls=%d res=%+v", f.calls, refreshed)
	}
}

func TestPipelineCacheExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := &fakeFetcher{series: exampleSeries()}
	c := cache.NewMemoryCache(24 * time.Hour).WithClock(clock)
	p := NewPipeline(f, newStore(t), c, nil, WithClock(clock))

	p.Load(context.Background())
	now = now.Add(23 * time.Hour)
	p.Load(context.Background())
	if f.calls != 1 {
		t.Fatalf("calls = %d within ttl", f.calls)
	}
	now = now.Add(2 * time.Hour)
	p.Load(context.Background())
	if f.calls != 2 {
		t.Fatalf("calls = %d after ttl", f.calls)
	}
}

func TestPipelinePlaceholderKeyIsUnavailable(t *testing.T) {
	m := &countingMetrics{}
	p := NewPipeline(fred.New("YOUR_API_KEY"), newStore(t), cache.NewMemoryCache(time.Hour), nil, WithMetrics(m))

	res := p.Load(context.Background())
	if res.Status != models.StatusUnavailable || res.Reason != models.FailureConfiguration {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Rows) != 0 || res.Message != models.MessageMissingKey {
		t.Fatalf("unavailable result must have no rows and the key message: %+v", res)
	}
	if m.runs[models.FailureConfiguration] != 1 {
		t.Fatalf("metrics runs = %+v", m.runs)
	}
}

func TestPipelineFailureIsNotCached(t *testing.T) {
	f := &fakeFetcher{err: models.NewPipelineError(models.FailureNetwork, "fred", errors.New("timeout"))}
	pub := &fakePublisher{}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil, WithPublisher(pub))

	res := p.Load(context.Background())
	if res.Status != models.StatusUnavailable || res.Reason != models.FailureNetwork || len(res.Rows) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(pub.got) != 0 {
		t.Fatalf("failed run must not publish")
	}

	f.err = nil
	f.series = exampleSeries()
	res = p.Load(context.Background())
	if f.calls != 2 || res.Status != models.StatusOK || res.Cached {
		t.Fatalf("expected a fresh retry, calls=%d res=%+v", f.calls, res)
	}
}

func TestPipelineEmptyOverlapIsOKWithNoRows(t *testing.T) {
	f := &fakeFetcher{series: map[models.Indicator][]models.RawObservation{
		models.IndicatorGDP:          {obs(d(2020, 1), 1)},
		models.IndicatorCPI:          {obs(d(2020, 2), 1)},
		models.IndicatorUnemployment: {obs(d(2020, 3), 1)},
	}}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil)

	res := p.Load(context.Background())
	if res.Status != models.StatusOK || len(res.Rows) != 0 || res.Available() {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPipelinePublishErrorDoesNotFailRun(t *testing.T) {
	f := &fakeFetcher{series: exampleSeries()}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil,
		WithPublisher(&fakePublisher{err: errors.New("broker down")}))

	if res := p.Load(context.Background()); res.Status != models.StatusOK {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPipelineStorageFailure(t *testing.T) {
	f := &fakeFetcher{series: exampleSeries()}
	s := newStore(t)
	_ = s.Close()
	p := NewPipeline(f, s, cache.NewMemoryCache(time.Hour), nil)

	res := p.Load(context.Background())
	if res.Status != models.StatusUnavailable || res.Reason != models.FailureStorage {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPipelineConcurrentLoadsRunOnce(t *testing.T) {
	f := &fakeFetcher{series: exampleSeries()}
	p := NewPipeline(f, newStore(t), cache.NewMemoryCache(time.Hour), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Load(context.Background())
		}()
	}
	wg.Wait()

	if f.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", f.calls)
	}
}
