package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"promptd/internal/domain"
	"promptd/internal/infra/telemetry"
)

// Exporter re-registers resources as prompts named resource_<name>.
type Exporter struct {
	resources *ResourceRegistry
	prompts   *PromptRegistry
	sink      domain.PromptSink
	enabled   bool
	metrics   domain.Metrics
	logger    *zap.Logger
}

func NewExporter(resources *ResourceRegistry, prompts *PromptRegistry, sink domain.PromptSink, enabled bool, metrics domain.Metrics, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Exporter{
		resources: resources,
		prompts:   prompts,
		sink:      sink,
		enabled:   enabled,
		metrics:   metrics,
		logger:    logger.Named("export"),
	}
}

// Enabled reports whether exports run.
func (e *Exporter) Enabled() bool {
	return e.enabled
}

// Export registers every resource whose derived prompt name is not yet taken.
// Running it again without new resources registers nothing.
func (e *Exporter) Export(ctx context.Context) (domain.ExportResult, error) {
	result := domain.ExportResult{Enabled: e.enabled}
	if !e.enabled {
		return result, nil
	}

	for _, entry := range e.resources.List() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := ExportedName(entry.Name)
		if e.prompts.Has(name) {
			result.Skipped++
			continue
		}
		logger := e.logger.With(telemetry.ResourceField(entry.Name), telemetry.PromptField(name))

		data, err := os.ReadFile(entry.SourcePath)
		if err != nil {
			result.Failed++
			logger.Warn("read resource for export failed", zap.Error(err))
			continue
		}
		kind := entry.Meta.Kind
		description := fmt.Sprintf("Auto-exported resource (%s) from %s", kind, filepath.Base(entry.SourcePath))
		handler := resourceHandler(name, entry.Name, string(data))
		err = e.sink.RegisterPrompt(domain.PromptDefinition{
			Name:        name,
			Title:       entry.Name,
			Description: description,
			Arguments:   contextArguments,
		}, handler)
		e.metrics.ObserveSinkRegistration(domain.HandlerResource, err)
		if err != nil {
			result.Failed++
			logger.Warn("export resource failed",
				telemetry.EventField(telemetry.EventRegistrationFailed),
				zap.Error(err),
			)
			continue
		}

		e.prompts.UpsertIfChanged(name, entry.SourcePath, entry.ModifiedAt, domain.PromptMeta{
			Title:       entry.Name,
			Description: description,
			Origin:      domain.OriginResource,
			Source:      entry.Name,
			Handler:     handler,
		})
		result.Exported++
		logger.Debug("resource exported", telemetry.EventField(telemetry.EventResourceExported))
	}

	e.metrics.ObserveExport(result.Exported, result.Failed)
	e.metrics.SetRegistryEntries(domain.RegistryPrompts, e.prompts.Len())
	return result, nil
}

// ListExported returns the prompt entries created from resources.
func ListExported(prompts *PromptRegistry) []domain.PromptListing {
	return listPrompts(prompts, func(e PromptEntry) bool {
		return e.Meta.Origin == domain.OriginResource
	})
}
