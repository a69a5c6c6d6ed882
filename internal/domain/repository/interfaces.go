package repository

import (
	"context"

	"EconDash/internal/domain/models"
)

// SeriesFetcher pulls observation history from the data provider.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, seriesID string) ([]models.RawObservation, error)
	FetchAll(ctx context.Context) (map[models.Indicator][]models.RawObservation, error)
}

// Store persists the cleaned table and answers the yearly aggregation.
type Store interface {
	// Replace drops and recreates the table with rows.
	Replace(ctx context.Context, rows []models.CleanedRow) error
	ReadAll(ctx context.Context) ([]models.CleanedRow, error)
	AggregateYearly(ctx context.Context) ([]models.YearlyAggregate, error)
	Health(ctx context.Context) error
	Close() error
}

// ResultCache holds the last successful pipeline result.
type ResultCache interface {
	Get(ctx context.Context) (models.Result, bool, error)
	Set(ctx context.Context, r models.Result) error
	Invalidate(ctx context.Context) error
}

// DatasetPublisher announces a refreshed dataset to downstream consumers.
type DatasetPublisher interface {
	PublishRefresh(ctx context.Context, r models.Result) error
	Close() error
}

type Metrics interface {
	RecordRun(status models.Status, reason models.FailureKind)
	RecordCacheHit()
	RecordRows(stage string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
