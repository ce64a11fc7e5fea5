//go:build wireinject
// +build wireinject

package di

import (
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/config"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCacheService,
		ProvideLoader,
		ProvideFetcher,
		ProvideSignalPublisher,

		// Upstream clients
		ProvideMarketData,
		ProvideSentimentData,
		ProvideTechnicalData,

		// Use cases
		ProvideSnapshotBuilder,
		ProvideDashboardUseCase,
		ProvideRotationUseCase,
		ProvideLadderUseCase,

		// HTTP
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
