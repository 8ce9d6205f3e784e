package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"promptd/internal/domain"
	"promptd/internal/infra/registry"
	"promptd/internal/infra/scanner"
	"promptd/internal/infra/telemetry"
)

// PromptRegistry indexes every prompt delivered to the sink.
type PromptRegistry = registry.Registry[domain.PromptMeta]

// PromptEntry is one prompt registry entry.
type PromptEntry = registry.Entry[domain.PromptMeta]

// NewPromptRegistry creates an empty prompt registry.
func NewPromptRegistry() *PromptRegistry {
	return registry.New[domain.PromptMeta](domain.RegistryPrompts, domain.ErrPromptNotFound)
}

// PromptLoaderOptions configures a PromptLoader.
type PromptLoaderOptions struct {
	Dir              string
	FetchConcurrency int
}

// PromptLoader scans markdown prompt directories and registers new prompts with the sink.
type PromptLoader struct {
	registry *PromptRegistry
	sink     domain.PromptSink
	fetcher  domain.SourceFetcher
	config   domain.SourceConfig
	opts     PromptLoaderOptions
	metrics  domain.Metrics
	logger   *zap.Logger
}

func NewPromptLoader(
	reg *PromptRegistry,
	sink domain.PromptSink,
	fetcher domain.SourceFetcher,
	config domain.SourceConfig,
	opts PromptLoaderOptions,
	metrics domain.Metrics,
	logger *zap.Logger,
) *PromptLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = domain.DefaultFetchConcurrency
	}
	return &PromptLoader{
		registry: reg,
		sink:     sink,
		fetcher:  fetcher,
		config:   config,
		opts:     opts,
		metrics:  metrics,
		logger:   logger.Named("prompts"),
	}
}

// Registry exposes the prompt registry.
func (l *PromptLoader) Registry() *PromptRegistry {
	return l.registry
}

// Dir returns the local prompts directory.
func (l *PromptLoader) Dir() string {
	return l.opts.Dir
}

// LoadLocal loads *.md files from baseDir, naming them with the optional prefix.
func (l *PromptLoader) LoadLocal(ctx context.Context, baseDir, prefix string) (domain.LoadResult, error) {
	return l.loadDir(ctx, baseDir, prefix, domain.OriginLocal, "")
}

// LoadAll loads the local directory and then every configured remote source.
// A failing local directory or remote source is logged and skipped.
func (l *PromptLoader) LoadAll(ctx context.Context) (domain.PromptReloadResult, error) {
	start := time.Now()
	var result domain.PromptReloadResult

	prefix := ""
	if l.config != nil {
		prefix = l.config.LocalPrefix(ctx)
	}
	local, err := l.LoadLocal(ctx, l.opts.Dir, prefix)
	result.Local = local
	if err != nil {
		if ctx.Err() != nil {
			l.metrics.ObserveReload(domain.RegistryPrompts, time.Since(start), local.NewlyRegistered, err)
			return result, err
		}
		l.logger.Warn("local prompts load failed", telemetry.DirField(l.opts.Dir), zap.Error(err))
	}

	var sources []domain.RemoteSource
	if l.config != nil && l.fetcher != nil {
		sources = l.config.RemoteSources(ctx)
	}
	dirs := l.fetchAll(ctx, sources)
	for i, src := range sources {
		if dirs[i] == "" {
			result.RemoteFails++
			continue
		}
		res, err := l.loadDir(ctx, dirs[i], src.Prefix, domain.OriginRemote, src.Label())
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			result.RemoteFails++
			l.logger.Warn("remote prompts load failed", telemetry.SourceField(src.Label()), zap.Error(err))
			continue
		}
		result.RemoteCount += res.NewlyRegistered
	}

	l.metrics.ObserveReload(domain.RegistryPrompts, time.Since(start), result.Local.NewlyRegistered+result.RemoteCount, ctx.Err())
	l.metrics.SetRegistryEntries(domain.RegistryPrompts, l.registry.Len())
	return result, ctx.Err()
}

// fetchAll materializes every source concurrently. A failed source leaves an empty slot.
func (l *PromptLoader) fetchAll(ctx context.Context, sources []domain.RemoteSource) []string {
	dirs := make([]string, len(sources))
	if len(sources) == 0 {
		return dirs
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.FetchConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			dir, err := l.fetcher.Fetch(gctx, src)
			l.metrics.ObserveRemoteFetch(src.Label(), time.Since(start), err)
			if err != nil {
				l.logger.Warn("remote source unavailable",
					telemetry.EventField(telemetry.EventRemoteFetchFailed),
					telemetry.SourceField(src.Label()),
					zap.Error(err),
				)
				return nil
			}
			dirs[i] = dir
			return nil
		})
	}
	_ = g.Wait()
	return dirs
}

func (l *PromptLoader) loadDir(ctx context.Context, dir, prefix string, origin domain.PromptOrigin, source string) (domain.LoadResult, error) {
	result := domain.LoadResult{Dir: dir}
	paths, err := scanner.Scan(dir, scanner.Extensions(domain.PromptExtensions...))
	if err != nil {
		result.Total = l.registry.Len()
		if errors.Is(err, domain.ErrDirectoryMissing) {
			result.DirMissing = true
			l.logger.Warn("prompts directory missing", telemetry.DirField(dir))
			return result, nil
		}
		return result, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Total = l.registry.Len()
			return result, err
		}
		if l.loadFile(path, prefix, origin, source) {
			result.NewlyRegistered++
		}
	}
	result.Total = l.registry.Len()
	return result, nil
}

// loadFile returns true when the file produced a new sink registration.
func (l *PromptLoader) loadFile(path, prefix string, origin domain.PromptOrigin, source string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := domain.PrefixedName(prefix, base)
	logger := l.logger.With(telemetry.PromptField(name), telemetry.PathField(path))
	if name == "" {
		logger.Warn("prompt file name has no usable characters")
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("stat prompt failed", zap.Error(err))
		return false
	}
	exists, changed := l.registry.Stale(name, info.ModTime())
	if !changed {
		return false
	}
	if exists {
		entry, err := l.registry.Get(name)
		if err != nil {
			return false
		}
		// The sink keeps the original registration; only path and mtime move.
		l.registry.UpsertIfChanged(name, path, info.ModTime(), entry.Meta)
		logger.Info("updated content detected, keeping existing registration",
			telemetry.EventField(telemetry.EventPromptUpdated))
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read prompt failed", zap.Error(err))
		return false
	}
	body := string(data)
	meta := domain.ExtractMetadata(body, base)
	handler := promptHandler(name, meta.Title, body)
	def := domain.PromptDefinition{
		Name:        name,
		Title:       meta.Title,
		Description: firstNonEmpty(meta.Description, meta.Title, name),
		Arguments:   contextArguments,
	}
	err = l.sink.RegisterPrompt(def, handler)
	l.metrics.ObserveSinkRegistration(domain.HandlerPrompt, err)
	if err != nil {
		logger.Warn("register prompt failed",
			telemetry.EventField(telemetry.EventRegistrationFailed),
			zap.Error(err),
		)
		return false
	}

	l.registry.UpsertIfChanged(name, path, info.ModTime(), domain.PromptMeta{
		Title:       meta.Title,
		Description: def.Description,
		Origin:      origin,
		Source:      source,
		Handler:     handler,
	})
	logger.Debug("prompt registered", telemetry.EventField(telemetry.EventPromptRegistered))
	return true
}

// List returns the prompt registry in insertion order.
func (l *PromptLoader) List() []domain.PromptListing {
	return listPrompts(l.registry, nil)
}

func listPrompts(reg *PromptRegistry, keep func(PromptEntry) bool) []domain.PromptListing {
	entries := reg.List()
	out := make([]domain.PromptListing, 0, len(entries))
	for _, e := range entries {
		if keep != nil && !keep(e) {
			continue
		}
		out = append(out, domain.PromptListing{
			Name:        e.Name,
			Title:       e.Meta.Title,
			Description: e.Meta.Description,
			File:        e.SourcePath,
			Origin:      e.Meta.Origin,
			ModifiedAt:  e.ModifiedAt,
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
