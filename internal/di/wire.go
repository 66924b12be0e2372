//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideHistoryStore,
		ProvidePublisher,

		// Domain services
		ProvidePriceSource,
		ProvideQuoteStream,
		ProvideRegistry,
		ProvideNarrative,

		// Use cases and HTTP surface
		ProvideAnalyzeUseCase,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
