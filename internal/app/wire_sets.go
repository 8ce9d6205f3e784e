//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"promptd/internal/app/content"
	"promptd/internal/domain"
	"promptd/internal/infra/gateway"
	"promptd/internal/infra/notifications"
)

var CoreInfraSet = wire.NewSet(
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewEventHub,
	NewMCPServer,
	NewPromptSink,
	NewToolSink,
	NewCatalogLoader,
	NewAuthenticator,
	NewAuthStatus,
	wire.Bind(new(domain.PromptSink), new(*gateway.PromptSink)),
	wire.Bind(new(domain.EventPublisher), new(*notifications.EventHub)),
)

var ContentSet = wire.NewSet(
	content.NewPromptRegistry,
	content.NewResourceRegistry,
	NewSourceConfig,
	NewSourceFetcher,
	NewPromptLoader,
	NewResourceLoader,
	NewExporter,
)

var ControlPlaneSet = wire.NewSet(
	wire.Struct(new(ControlPlaneOptions), "*"),
	NewControlPlane,
	NewHTTPServer,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ContentSet,
	ControlPlaneSet,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
