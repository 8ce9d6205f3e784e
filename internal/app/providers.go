package app

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"promptd/internal/app/content"
	"promptd/internal/domain"
	"promptd/internal/infra/auth"
	"promptd/internal/infra/catalog"
	"promptd/internal/infra/gateway"
	"promptd/internal/infra/gitfetch"
	"promptd/internal/infra/httpapi"
	"promptd/internal/infra/notifications"
	"promptd/internal/infra/telemetry"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewEventHub(metrics domain.Metrics) *notifications.EventHub {
	return notifications.NewEventHub(metrics)
}

func NewMCPServer(cfg ServeConfig) *mcp.Server {
	version := cfg.Version
	if version == "" {
		version = Version
	}
	return gateway.NewServer(version)
}

func NewPromptSink(server *mcp.Server, logger *zap.Logger) *gateway.PromptSink {
	return gateway.NewPromptSink(server, logger)
}

func NewToolSink(server *mcp.Server, logger *zap.Logger) *gateway.ToolSink {
	return gateway.NewToolSink(server, logger)
}

func NewCatalogLoader(logger *zap.Logger) *catalog.Loader {
	return catalog.NewLoader(logger)
}

func NewSourceConfig(loader *catalog.Loader, settings catalog.Settings) domain.SourceConfig {
	return catalog.NewFileSourceConfig(loader, settings.ConfigDir, settings.LocalPrefix)
}

func NewSourceFetcher(settings catalog.Settings, logger *zap.Logger) domain.SourceFetcher {
	return gitfetch.New(gitfetch.Options{
		CacheDir:  settings.CacheDir,
		Depth:     settings.FetchDepth,
		Timeout:   settings.FetchTimeout,
		AuthToken: settings.GitAuthToken,
	}, logger)
}

func NewPromptLoader(
	registry *content.PromptRegistry,
	sink domain.PromptSink,
	fetcher domain.SourceFetcher,
	config domain.SourceConfig,
	settings catalog.Settings,
	metrics domain.Metrics,
	logger *zap.Logger,
) *content.PromptLoader {
	return content.NewPromptLoader(registry, sink, fetcher, config, content.PromptLoaderOptions{
		Dir:              settings.PromptsDir,
		FetchConcurrency: settings.FetchConcurrency,
	}, metrics, logger)
}

func NewResourceLoader(registry *content.ResourceRegistry, settings catalog.Settings, metrics domain.Metrics, logger *zap.Logger) *content.ResourceLoader {
	return content.NewResourceLoader(registry, settings.ResourcesDir, metrics, logger)
}

func NewExporter(
	resources *content.ResourceRegistry,
	prompts *content.PromptRegistry,
	sink domain.PromptSink,
	settings catalog.Settings,
	metrics domain.Metrics,
	logger *zap.Logger,
) *content.Exporter {
	return content.NewExporter(resources, prompts, sink, settings.ExportResourcesAsPrompts, metrics, logger)
}

func NewAuthenticator(cfg ServeConfig, settings catalog.Settings, logger *zap.Logger) *auth.Authenticator {
	return auth.New(AuthConfig(cfg, settings), logger)
}

// AuthConfig maps settings and CLI switches onto the authenticator config.
func AuthConfig(cfg ServeConfig, settings catalog.Settings) auth.Config {
	return auth.Config{
		DisabledByCLI: cfg.DisableAuth,
		Mode:          auth.Mode(settings.Auth.Type),
		Token:         settings.Auth.Token,
		Secret:        settings.Auth.JWTSecret,
		Leeway:        time.Duration(settings.Auth.LeewaySeconds) * time.Second,
	}
}

func NewAuthStatus(authenticator *auth.Authenticator) domain.AuthStatus {
	return authenticator.Status()
}

func NewHTTPServer(
	cp *ControlPlane,
	hub *notifications.EventHub,
	authenticator *auth.Authenticator,
	metrics domain.Metrics,
	registry *prometheus.Registry,
	logger *zap.Logger,
) *httpapi.Server {
	return httpapi.New(httpapi.Options{
		ControlPlane: cp,
		Events:       hub,
		Publisher:    hub,
		Auth:         authenticator,
		Metrics:      metrics,
		Gatherer:     registry,
		Logger:       logger,
	})
}
