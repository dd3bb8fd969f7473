//go:build wireinject
// +build wireinject

package di

import (
	"FinNotify/internal/domain/repository"
	"FinNotify/pkg/config"
	"FinNotify/pkg/metrics"
	"FinNotify/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,

		// Metrics
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Infrastructure
		ProvideLimiter,
		ProvideHTTPClient,
		ProvideCache,
		ProvideKafkaSink,

		// Providers
		ProvideAlphaVantage,
		ProvideFinnhub,
		ProvideCoinGecko,

		// Notification
		ProvideEvaluationPublisher,
		ProvideNotifier,

		// Use cases
		ProvideRules,
		ProvideSnapshotFetcher,
		ProvideStockNotifier,
		ProvideCryptoReporter,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
