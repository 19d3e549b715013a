//go:build wireinject
// +build wireinject

package di

import (
	"EvoTrader/pkg/config"
	"EvoTrader/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideSignalProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideTradeSink,
		ProvideSignalPublisher,
		ProvideTickStream,
		ProvideDispatcher,

		// Use cases
		ProvideEngine,
		ProvideOutcomeProcessor,
		ProvideKafkaTicksHandler,
		ProvideTickCollector,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
