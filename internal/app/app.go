package app

import (
	"context"
	"io"

	"go.uber.org/zap"

	"promptd/internal/infra/catalog"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type App struct {
	logger *zap.Logger
}

// ServeConfig carries the command line switches of the serve command.
type ServeConfig struct {
	ConfigPath  string
	Transport   string
	Port        int
	Watch       bool
	DisableAuth bool
	Version     string
}

// ValidateConfig carries the command line switches of the validate command.
type ValidateConfig struct {
	ConfigPath string
	Output     io.Writer
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger}
}

// Serve loads settings, wires the application and blocks until ctx is done or the
// transport exits.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	settings, err := catalog.NewLoader(a.logger).LoadSettings(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Port > 0 {
		settings.HTTPPort = cfg.Port
	}
	if cfg.Watch {
		settings.Watch = true
	}

	application, err := InitializeApplication(ctx, cfg, settings, LoggingConfig{Logger: a.logger})
	if err != nil {
		return err
	}
	return application.Run()
}
