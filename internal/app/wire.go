//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/eslsoft/drillnet/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/drillnet/internal/adapter/repository"
	"github.com/eslsoft/drillnet/internal/adapter/sentencegen"
	"github.com/eslsoft/drillnet/internal/infrastructure/config"
	"github.com/eslsoft/drillnet/internal/infrastructure/database"
	"github.com/eslsoft/drillnet/internal/infrastructure/server"
	"github.com/eslsoft/drillnet/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConnection,
)

var repositorySet = wire.NewSet(
	adapterrepo.NewExerciseRepository,
	adapterrepo.NewMasteryRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewCooldownCache,
	providePreloadCache,
	usecase.NewWordPoolBuilder,
	usecase.NewWordSelector,
	usecase.NewDiversityScorer,
	usecase.NewPatternDiversity,
	usecase.NewCooldownTracker,
	usecase.NewFallbackGenerator,
	usecase.NewOrchestrator,
)

var generatorSet = wire.NewSet(
	provideGenerator,
	wire.Bind(new(usecase.SentenceGenerator), new(*sentencegen.Client)),
)

var serverSet = wire.NewSet(
	server.NewLogger,
	httpapi.NewHandler,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		generatorSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Pool", "Server"),
	)
	return nil, nil, nil
}
