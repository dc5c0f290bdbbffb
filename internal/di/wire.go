//go:build wireinject
// +build wireinject

package di

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/config"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCandleSource,
		ProvideCandleStream,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisClient,

		// Repositories
		ProvideCandleStore,
		ProvideSignalPublisher,
		ProvideQueue,

		// Use cases
		ProvidePatternAnalysis,
		ProvideAnalysisAggregate,
		ProvideScan,
		ProvideReportWriter,
		ProvideOrchestrator,
		ProvideCandleCollector,

		// HTTP handler and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
