package app

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"

	"promptd/internal/app/content"
	"promptd/internal/domain"
	"promptd/internal/infra/catalog"
)

// ValidationReport is printed by the validate command.
type ValidationReport struct {
	PromptsDir    string                      `json:"promptsDir"`
	ResourcesDir  string                      `json:"resourcesDir"`
	RemoteSources []domain.RemoteSource       `json:"remoteSources"`
	Prompts       domain.PromptReloadResult   `json:"prompts"`
	Resources     domain.ResourceReloadResult `json:"resources"`
	Registered    []string                    `json:"registered"`
}

// dryRunSink accepts every registration once without exposing anything.
type dryRunSink struct {
	mu    sync.Mutex
	names []string
	seen  map[string]struct{}
}

func (s *dryRunSink) RegisterPrompt(def domain.PromptDefinition, handler domain.Handler) error {
	if def.Name == "" || handler.Render == nil {
		return domain.ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[def.Name]; ok {
		return domain.ErrAlreadyRegistered
	}
	s.seen[def.Name] = struct{}{}
	s.names = append(s.names, def.Name)
	return nil
}

// ValidateConfig runs one load cycle against a dry-run sink and prints the outcome as JSON.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	logger := NewLogging(LoggingConfig{Logger: a.logger}).Logger

	loader := catalog.NewLoader(logger)
	settings, err := loader.LoadSettings(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	sources := NewSourceConfig(loader, settings)

	sink := &dryRunSink{seen: make(map[string]struct{})}
	prompts := content.NewPromptRegistry()
	resources := content.NewResourceRegistry()
	cp, err := NewControlPlane(ControlPlaneOptions{
		Prompts:   NewPromptLoader(prompts, sink, NewSourceFetcher(settings, logger), sources, settings, nil, logger),
		Resources: NewResourceLoader(resources, settings, nil, logger),
		Exporter:  NewExporter(resources, prompts, sink, settings, nil, logger),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	report := ValidationReport{
		PromptsDir:    settings.PromptsDir,
		ResourcesDir:  settings.ResourcesDir,
		RemoteSources: sources.RemoteSources(ctx),
	}
	if report.Prompts, err = cp.ReloadPrompts(ctx); err != nil {
		return err
	}
	if report.Resources, err = cp.ReloadResources(ctx); err != nil {
		return err
	}
	report.Registered = sink.names

	logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.Int("prompts", prompts.Len()),
		zap.Int("resources", resources.Len()),
	)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
