package app

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"promptd/internal/infra/auth"
	"promptd/internal/infra/catalog"
	"promptd/internal/infra/gateway"
	"promptd/internal/infra/httpapi"
	"promptd/internal/infra/telemetry"
)

// Application wires the control plane to its transports.
type Application struct {
	ctx          context.Context
	cfg          ServeConfig
	settings     catalog.Settings
	logger       *zap.Logger
	auth         *auth.Authenticator
	controlPlane *ControlPlane
	mcpServer    *mcp.Server
	toolSink     *gateway.ToolSink
	httpServer   *httpapi.Server
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Context      context.Context
	ServeConfig  ServeConfig
	Settings     catalog.Settings
	Logger       *zap.Logger
	Auth         *auth.Authenticator
	ControlPlane *ControlPlane
	MCPServer    *mcp.Server
	ToolSink     *gateway.ToolSink
	HTTPServer   *httpapi.Server
}

// NewApplication constructs the application runtime.
func NewApplication(opts ApplicationOptions) *Application {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.ServeConfig.Transport == "" {
		opts.ServeConfig.Transport = TransportStdio
	}
	return &Application{
		ctx:          ctx,
		cfg:          opts.ServeConfig,
		settings:     opts.Settings,
		logger:       opts.Logger,
		auth:         opts.Auth,
		controlPlane: opts.ControlPlane,
		mcpServer:    opts.MCPServer,
		toolSink:     opts.ToolSink,
		httpServer:   opts.HTTPServer,
	}
}

// Run performs the initial load and serves the configured transport until it exits.
func (a *Application) Run() error {
	if a.cfg.Transport != TransportStdio && a.cfg.Transport != TransportHTTP {
		return fmt.Errorf("unsupported transport: %s", a.cfg.Transport)
	}
	a.logger.Info("configuration loaded",
		zap.String("config", a.cfg.ConfigPath),
		zap.String("transport", a.cfg.Transport),
		telemetry.DirField(a.settings.PromptsDir),
		zap.String("resources_dir", a.settings.ResourcesDir),
	)

	if err := a.controlPlane.RegisterTools(a.toolSink); err != nil {
		return err
	}
	a.initialLoad()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if a.settings.Watch {
		watcher := NewDirectoryWatcher(a.controlPlane, a.settings.PromptsDir, a.settings.ResourcesDir, 0, a.logger)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return a.serve(gctx)
	})
	return g.Wait()
}

func (a *Application) initialLoad() {
	if _, err := a.controlPlane.ReloadPrompts(a.ctx); err != nil {
		a.logger.Warn("initial prompt load failed", zap.Error(err))
	}
	if _, err := a.controlPlane.ReloadResources(a.ctx); err != nil {
		a.logger.Warn("initial resource load failed", zap.Error(err))
	}
}

func (a *Application) serve(ctx context.Context) error {
	switch a.cfg.Transport {
	case TransportHTTP:
		status := a.auth.Status()
		a.logger.Info("auth status",
			zap.Bool("enabled", status.Enabled),
			zap.String("mode", status.Mode),
			zap.Bool("token_configured", status.TokenConfigured),
			zap.Bool("disabled_by_cli", status.DisabledByCLI),
		)
		if !status.Enabled {
			a.logger.Warn("http front end is running without authentication")
		}
		addr := net.JoinHostPort("", strconv.Itoa(a.settings.HTTPPort))
		return telemetry.ListenAndServeHTTP(ctx, addr, a.httpServer, a.logger)
	default:
		err := gateway.RunStdio(ctx, a.mcpServer)
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}
