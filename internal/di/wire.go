//go:build wireinject
// +build wireinject

package di

import (
	"EconDash/pkg/config"
	"EconDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideRateLimiter,
		ProvideSeriesFetcher,
		ProvideStore,
		ProvideResultCache,
		ProvideDatasetPublisher,

		// Use cases
		ProvidePipeline,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
