package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/drillnet/internal/adapter/sentencegen"
	"github.com/eslsoft/drillnet/internal/infrastructure/config"
	"github.com/eslsoft/drillnet/internal/usecase"
)

func provideGenerator(cfg *config.Config, logger *logrus.Logger) *sentencegen.Client {
	return sentencegen.New(cfg.Generator.BaseURL, cfg.Generator.Timeout(), logger)
}

func providePreloadCache(cfg *config.Config) *usecase.PreloadCache {
	return usecase.NewPreloadCache(cfg.Generator.PreloadTTL())
}
