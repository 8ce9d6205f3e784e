package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"promptd/internal/domain"
	"promptd/internal/infra/registry"
	"promptd/internal/infra/scanner"
	"promptd/internal/infra/telemetry"
)

// ResourceRegistry indexes data files that are not directly invokable.
type ResourceRegistry = registry.Registry[domain.ResourceMeta]

// NewResourceRegistry creates an empty resource registry.
func NewResourceRegistry() *ResourceRegistry {
	return registry.New[domain.ResourceMeta](domain.RegistryResources, domain.ErrResourceNotFound)
}

// ResourceLoader scans resource directories into the resource registry.
type ResourceLoader struct {
	registry *ResourceRegistry
	dir      string
	metrics  domain.Metrics
	logger   *zap.Logger
}

func NewResourceLoader(reg *ResourceRegistry, dir string, metrics domain.Metrics, logger *zap.Logger) *ResourceLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &ResourceLoader{
		registry: reg,
		dir:      dir,
		metrics:  metrics,
		logger:   logger.Named("resources"),
	}
}

// Registry exposes the resource registry.
func (l *ResourceLoader) Registry() *ResourceRegistry {
	return l.registry
}

// Dir returns the configured resources directory.
func (l *ResourceLoader) Dir() string {
	return l.dir
}

// Reload loads the configured resources directory.
func (l *ResourceLoader) Reload(ctx context.Context) (domain.LoadResult, error) {
	return l.Load(ctx, l.dir)
}

// Load records every .md, .txt and .json file in baseDir.
func (l *ResourceLoader) Load(ctx context.Context, baseDir string) (domain.LoadResult, error) {
	start := time.Now()
	result := domain.LoadResult{Dir: baseDir}

	paths, err := scanner.Scan(baseDir, scanner.Extensions(domain.ResourceExtensions...))
	if err != nil {
		result.Total = l.registry.Len()
		if errors.Is(err, domain.ErrDirectoryMissing) {
			result.DirMissing = true
			l.logger.Warn("resources directory missing", telemetry.DirField(baseDir))
			err = nil
		}
		l.metrics.ObserveReload(domain.RegistryResources, time.Since(start), 0, err)
		return result, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Total = l.registry.Len()
			return result, err
		}
		name := domain.SanitizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if name == "" {
			l.logger.Warn("resource file name has no usable characters", telemetry.PathField(path))
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			l.logger.Warn("stat resource failed", telemetry.PathField(path), zap.Error(err))
			continue
		}
		_, isNew := l.registry.UpsertIfChanged(name, path, info.ModTime(), domain.ResourceMeta{Kind: domain.ClassifyContent(path)})
		if isNew {
			result.NewlyRegistered++
			l.logger.Debug("resource loaded",
				telemetry.EventField(telemetry.EventResourceLoaded),
				telemetry.ResourceField(name),
			)
		}
	}

	result.Total = l.registry.Len()
	l.metrics.ObserveReload(domain.RegistryResources, time.Since(start), result.NewlyRegistered, nil)
	l.metrics.SetRegistryEntries(domain.RegistryResources, result.Total)
	return result, nil
}

// List returns the resource registry in insertion order.
func (l *ResourceLoader) List() []domain.ResourceListing {
	entries := l.registry.List()
	out := make([]domain.ResourceListing, 0, len(entries))
	for _, e := range entries {
		out = append(out, resourceListing(e))
	}
	return out
}

// GetContent reads the current body of a resource. JSON is re-indented with two spaces
// when it parses and returned raw otherwise.
func (l *ResourceLoader) GetContent(name string) (domain.ResourceContent, error) {
	entry, err := l.registry.Get(name)
	if err != nil {
		return domain.ResourceContent{}, err
	}
	data, err := os.ReadFile(entry.SourcePath)
	if err != nil {
		return domain.ResourceContent{}, domain.E(domain.CodeUnavailable, "resources.get_content", name, err)
	}
	body := string(data)
	if entry.Meta.Kind == domain.ContentJSON {
		body = indentJSON(data)
	}
	return domain.ResourceContent{
		ResourceListing: resourceListing(entry),
		Content:         body,
	}, nil
}

func indentJSON(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return string(data)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, trimmed, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

func resourceListing(e registry.Entry[domain.ResourceMeta]) domain.ResourceListing {
	return domain.ResourceListing{
		Name:       e.Name,
		File:       e.SourcePath,
		Type:       e.Meta.Kind,
		ModifiedAt: e.ModifiedAt,
	}
}
