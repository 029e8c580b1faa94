//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"withings-mcp/internal"
	"withings-mcp/internal/auth"
	"withings-mcp/internal/controllers"
	"withings-mcp/internal/providers"
	"withings-mcp/internal/services"
	"withings-mcp/internal/structures"
	"withings-mcp/internal/withings"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewZstdCompressor,
		providers.NewInstrumentedCacheProvider,

		auth.NewTokenStore,
		auth.NewManager,
		wire.Bind(new(withings.TokenSource), new(*auth.Manager)),
		withings.NewClient,
		withings.NewAPI,
		services.NewHealthDataService,
		services.NewExportService,
		controllers.NewToolController,
		controllers.NewHealthController,
		controllers.NewCallbackController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
