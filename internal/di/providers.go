package di

import (
	"context"
	"fmt"

	"EconDash/internal/domain/repository"
	"EconDash/internal/handler/api"
	internalrepo "EconDash/internal/repository"
	icache "EconDash/internal/service/cache"
	"EconDash/internal/service/fred"
	"EconDash/internal/service/ratelimit"
	"EconDash/internal/usecase"
	pkgch "EconDash/pkg/clickhouse"
	"EconDash/pkg/config"
	xhttp "EconDash/pkg/http"
	pkgkafka "EconDash/pkg/kafka"
	applogger "EconDash/pkg/logger"
	"EconDash/pkg/metrics"
	"EconDash/pkg/server"
	pkgsqlite "EconDash/pkg/sqlite"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.PerMinute(cfg.Fred.RatePerMinute)
}

// ProvideSeriesFetcher creates the FRED client.
func ProvideSeriesFetcher(cfg *config.Config, limiter *ratelimit.Limiter, l *applogger.Logger) repository.SeriesFetcher {
	return fred.New(cfg.Fred.APIKey,
		fred.WithBaseURL(cfg.Fred.BaseURL),
		fred.WithTimeout(cfg.Fred.Timeout),
		fred.WithLimiter(limiter),
		fred.WithLogger(l.With(applogger.String("component", "fred"))),
	)
}

// ProvideStore opens the configured storage backend.
func ProvideStore(cfg *config.Config, l *applogger.Logger) (repository.Store, func(), error) {
	sl := l.With(applogger.String("component", "store"), applogger.String("backend", cfg.Storage.Backend))

	var (
		store repository.Store
		err   error
	)
	switch cfg.Storage.Backend {
	case "clickhouse":
		store, err = provideClickHouseStore(cfg, sl)
	default:
		store, err = provideSQLiteStore(cfg, sl)
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			sl.Warn("store close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideSQLiteStore(cfg *config.Config, l *applogger.Logger) (repository.Store, error) {
	cli, err := pkgsqlite.NewClient(
		pkgsqlite.WithPath(cfg.Storage.SQLite.Path),
		pkgsqlite.WithBusyTimeout(cfg.Storage.SQLite.BusyTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite client: %w", err)
	}
	store, err := internalrepo.NewSQLiteStore(cli, cfg.Storage.Table, l)
	if err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	l.Info("sqlite store ready", applogger.String("path", cli.Path()))
	return store, nil
}

func provideClickHouseStore(cfg *config.Config, l *applogger.Logger) (repository.Store, error) {
	ch := cfg.Storage.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	store, err := internalrepo.NewClickHouseStore(client, cfg.Storage.Table, l)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse store: %w", err)
	}
	l.Info("clickhouse store ready", applogger.String("database", client.Database()))
	return store, nil
}

// ProvideResultCache creates the in-memory or Redis result cache.
func ProvideResultCache(cfg *config.Config, l *applogger.Logger) (repository.ResultCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return icache.NewMemoryCache(cfg.Pipeline.CacheTTL), func() {}, nil
	}

	rc, err := icache.NewRedisCache(context.Background(), icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Key:      cfg.Cache.Key,
		TTL:      cfg.Pipeline.CacheTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return rc, cleanup, nil
}

// ProvideDatasetPublisher creates the Kafka refresh publisher, or a no-op
// publisher when Kafka is disabled.
func ProvideDatasetPublisher(cfg *config.Config, l *applogger.Logger) (repository.DatasetPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	l.Info("kafka publisher ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic),
	)
	return pub, cleanup, nil
}

// ProvidePipeline creates the ETL pipeline use case.
func ProvidePipeline(
	cfg *config.Config,
	fetcher repository.SeriesFetcher,
	store repository.Store,
	cache repository.ResultCache,
	pub repository.DatasetPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(fetcher, store, cache,
		l.With(applogger.String("component", "pipeline")),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithRunTimeout(cfg.Pipeline.RunTimeout),
	)
}

// ProvideHTTPHandler creates the dashboard API handler.
func ProvideHTTPHandler(l *applogger.Logger, p *usecase.Pipeline, store repository.Store) xhttp.Handler {
	return api.NewDashboardEchoHandler(l, p, store)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, p *usecase.Pipeline, h xhttp.Handler) *server.App {
	return server.New(cfg, l, p, h)
}
