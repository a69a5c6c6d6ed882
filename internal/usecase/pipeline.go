package usecase

import (
	"context"
	"sync"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
	applogger "EconDash/pkg/logger"

	"github.com/google/uuid"
)

// Pipeline runs fetch, merge, clean, persist and aggregate, and serves the
// yearly table from cache while it is fresh.
type Pipeline struct {
	mu sync.Mutex

	fetcher   domrepo.SeriesFetcher
	store     domrepo.Store
	cache     domrepo.ResultCache
	publisher domrepo.DatasetPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger

	runTimeout time.Duration
	now        func() time.Time
}

type PipelineOption func(*Pipeline)

func WithPublisher(p domrepo.DatasetPublisher) PipelineOption {
	return func(pl *Pipeline) {
		if p != nil {
			pl.publisher = p
		}
	}
}

func WithMetrics(m domrepo.Metrics) PipelineOption {
	return func(pl *Pipeline) {
		if m != nil {
			pl.metrics = m
		}
	}
}

// WithRunTimeout bounds a single uncached run.
func WithRunTimeout(d time.Duration) PipelineOption {
	return func(pl *Pipeline) {
		if d > 0 {
			pl.runTimeout = d
		}
	}
}

func WithClock(now func() time.Time) PipelineOption {
	return func(pl *Pipeline) {
		pl.now = now
	}
}

func NewPipeline(fetcher domrepo.SeriesFetcher, store domrepo.Store, cache domrepo.ResultCache, l *applogger.Logger, opts ...PipelineOption) *Pipeline {
	if l == nil {
		l = applogger.Nop()
	}
	p := &Pipeline{
		fetcher:    fetcher,
		store:      store,
		cache:      cache,
		metrics:    nopMetrics{},
		l:          l,
		runTimeout: 2 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the cached result while fresh, otherwise runs the pipeline.
// It never returns partial rows: a failed run is reported as unavailable.
func (p *Pipeline) Load(ctx context.Context) models.Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, ok, err := p.cache.Get(ctx)
	switch {
	case err != nil:
		p.l.Warn("result cache read failed", applogger.Error(err))
	case ok:
		p.metrics.RecordCacheHit()
		res.Cached = true
		return res
	}
	return p.run(ctx)
}

// Refresh discards the cached result and runs the pipeline.
func (p *Pipeline) Refresh(ctx context.Context) models.Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.cache.Invalidate(ctx); err != nil {
		p.l.Warn("result cache invalidate failed", applogger.Error(err))
	}
	return p.run(ctx)
}

func (p *Pipeline) run(ctx context.Context) models.Result {
	runID := uuid.NewString()
	log := p.l.With(applogger.String("run_id", runID))
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	rows, err := p.execute(runCtx, log)
	if err != nil {
		kind := models.KindOf(err)
		fields := []applogger.Field{applogger.String("reason", string(kind)), applogger.Error(err)}
		if kind == models.FailureConfiguration {
			log.Warn("pipeline skipped: provider credential not configured", fields...)
		} else {
			log.Error("pipeline run failed", fields...)
		}
		p.metrics.RecordRun(models.StatusUnavailable, kind)
		p.metrics.RecordError(string(kind))
		return models.Unavailable(err, runID, p.now())
	}

	res := models.Result{
		Status:     models.StatusOK,
		Rows:       rows,
		RunID:      runID,
		ComputedAt: p.now(),
	}
	if err := p.cache.Set(ctx, res); err != nil {
		log.Warn("result cache write failed", applogger.Error(err))
	}
	if p.publisher != nil {
		if err := p.publisher.PublishRefresh(ctx, res); err != nil {
			log.Warn("refresh event not published", applogger.Error(err))
		}
	}

	p.metrics.RecordRun(models.StatusOK, models.FailureNone)
	p.metrics.RecordLatency("run", time.Since(start).Seconds())
	log.Info("pipeline run completed",
		applogger.Int("years", len(rows)),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return res
}

func (p *Pipeline) execute(ctx context.Context, log *applogger.Logger) ([]models.YearlyAggregate, error) {
	t := time.Now()
	series, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordLatency("fetch", time.Since(t).Seconds())

	merged := Merge(series[models.IndicatorGDP], series[models.IndicatorCPI], series[models.IndicatorUnemployment])
	cleaned := Clean(merged)
	p.metrics.RecordRows("merged", len(merged))
	p.metrics.RecordRows("cleaned", len(cleaned))
	log.Debug("series merged",
		applogger.Int("merged", len(merged)),
		applogger.Int("cleaned", len(cleaned)),
	)

	t = time.Now()
	if err := p.store.Replace(ctx, cleaned); err != nil {
		return nil, err
	}
	p.metrics.RecordLatency("persist", time.Since(t).Seconds())

	t = time.Now()
	agg, err := p.store.AggregateYearly(ctx)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordLatency("aggregate", time.Since(t).Seconds())
	p.metrics.RecordRows("yearly", len(agg))
	return agg, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(models.Status, models.FailureKind) {}
func (nopMetrics) RecordCacheHit()                             {}
func (nopMetrics) RecordRows(string, int)                      {}
func (nopMetrics) RecordError(string)                          {}
func (nopMetrics) RecordLatency(string, float64)               {}
