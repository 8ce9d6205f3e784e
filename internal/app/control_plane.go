package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"promptd/internal/app/content"
	"promptd/internal/domain"
	"promptd/internal/infra/telemetry"
)

// ControlPlaneOptions captures the collaborators of a ControlPlane.
type ControlPlaneOptions struct {
	Prompts   *content.PromptLoader
	Resources *content.ResourceLoader
	Exporter  *content.Exporter
	Events    domain.EventPublisher
	Auth      domain.AuthStatus
	Logger    *zap.Logger
}

// ControlPlane owns both registries and serializes every reload behind one lock.
type ControlPlane struct {
	prompts   *content.PromptLoader
	resources *content.ResourceLoader
	exporter  *content.Exporter
	events    domain.EventPublisher
	auth      domain.AuthStatus
	logger    *zap.Logger

	reloadMu sync.Mutex
	tools    *toolSet
}

var _ domain.ControlPlane = (*ControlPlane)(nil)

func NewControlPlane(opts ControlPlaneOptions) (*ControlPlane, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cp := &ControlPlane{
		prompts:   opts.Prompts,
		resources: opts.Resources,
		exporter:  opts.Exporter,
		events:    opts.Events,
		auth:      opts.Auth,
		logger:    logger.Named("control_plane"),
	}
	tools, err := newToolSet(cp)
	if err != nil {
		return nil, err
	}
	cp.tools = tools
	return cp, nil
}

// ReloadPrompts loads the local prompts directory and every remote source.
func (c *ControlPlane) ReloadPrompts(ctx context.Context) (domain.PromptReloadResult, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	start := time.Now()
	result, err := c.prompts.LoadAll(ctx)
	if err != nil {
		return result, err
	}
	c.logger.Info("prompts reloaded",
		telemetry.EventField(telemetry.EventReloadComplete),
		zap.Int("local", result.Local.NewlyRegistered),
		zap.Int("remote", result.RemoteCount),
		zap.Int("remote_failures", result.RemoteFails),
		zap.Int("total", c.prompts.Registry().Len()),
		telemetry.DurationField(time.Since(start)),
	)
	c.publish(domain.EventReloadPrompts, result)
	return result, nil
}

// ReloadResources rescans the resources directory and exports new resources as prompts.
func (c *ControlPlane) ReloadResources(ctx context.Context) (domain.ResourceReloadResult, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	start := time.Now()
	var result domain.ResourceReloadResult
	loaded, err := c.resources.Reload(ctx)
	result.Resources = loaded
	if err != nil {
		return result, err
	}
	if c.exporter != nil {
		exported, err := c.exporter.Export(ctx)
		result.Export = exported
		if err != nil {
			return result, err
		}
	}
	c.logger.Info("resources reloaded",
		telemetry.EventField(telemetry.EventReloadComplete),
		zap.Int("new", loaded.NewlyRegistered),
		zap.Int("total", loaded.Total),
		zap.Int("exported", result.Export.Exported),
		telemetry.DirField(loaded.Dir),
		telemetry.DurationField(time.Since(start)),
	)
	c.publish(domain.EventReloadResources, result)
	return result, nil
}

func (c *ControlPlane) ListPrompts(_ context.Context) []domain.PromptListing {
	return c.prompts.List()
}

func (c *ControlPlane) ListResources(_ context.Context) []domain.ResourceListing {
	return c.resources.List()
}

func (c *ControlPlane) ListResourcePrompts(_ context.Context) []domain.PromptListing {
	return content.ListExported(c.prompts.Registry())
}

func (c *ControlPlane) GetResource(_ context.Context, name string) (domain.ResourceContent, error) {
	return c.resources.GetContent(name)
}

// RenderPrompt invokes the handler stored with a registered prompt.
func (c *ControlPlane) RenderPrompt(ctx context.Context, name string, args map[string]string) (domain.Transcript, error) {
	entry, err := c.prompts.Registry().Get(name)
	if err != nil {
		return domain.Transcript{}, err
	}
	if entry.Meta.Handler.Render == nil {
		return domain.Transcript{}, domain.E(domain.CodeInternal, "control_plane.render_prompt", name+": no handler", nil)
	}
	return entry.Meta.Handler.Render(ctx, args)
}

// InvokeTool runs a registered tool by name with JSON parameters.
func (c *ControlPlane) InvokeTool(ctx context.Context, name string, args json.RawMessage) (*domain.ToolResult, error) {
	return c.tools.invoke(ctx, name, args)
}

// RegisterTools hands every tool to the sink.
func (c *ControlPlane) RegisterTools(sink domain.ToolSink) error {
	return c.tools.register(sink)
}

// ToolNames lists the tools in registration order.
func (c *ControlPlane) ToolNames() []string {
	return c.tools.names()
}

func (c *ControlPlane) Status(_ context.Context) domain.Status {
	reg := c.prompts.Registry()
	return domain.Status{
		Prompts:     reg.Len(),
		Resources:   c.resources.Registry().Len(),
		PromptNames: reg.Names(),
		Auth:        c.auth,
	}
}

func (c *ControlPlane) publish(kind string, data any) {
	if c.events == nil {
		return
	}
	c.events.Publish(domain.Event{Type: kind, Data: data})
}
