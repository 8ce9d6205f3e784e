//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"promptd/internal/infra/catalog"
)

func InitializeApplication(ctx context.Context, cfg ServeConfig, settings catalog.Settings, logging LoggingConfig) (*Application, error) {
	wire.Build(AppSet)
	return nil, nil
}
