package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

// PromptsConfig holds the optional prompts_config.json settings.
type PromptsConfig struct {
	PrefixLocal string `mapstructure:"prefixLocal"`
}

type rawRemoteSource struct {
	Repository   string `json:"repository"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	Subdirectory string `json:"subdirectory"`
	Subdir       string `json:"subdir"`
	Name         string `json:"name"`
	Prefix       string `json:"prefix"`
}

const remoteSourcesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "repository": {"type": "string"},
      "repo": {"type": "string"},
      "branch": {"type": "string"},
      "subdirectory": {"type": "string"},
      "subdir": {"type": "string"},
      "name": {"type": "string"},
      "prefix": {"type": "string"}
    }
  }
}`

var resolvedSourcesSchema = mustResolveSchema(remoteSourcesSchema)

func mustResolveSchema(raw string) *jsonschema.Resolved {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		panic(fmt.Sprintf("remote sources schema: %v", err))
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("remote sources schema: %v", err))
	}
	return resolved
}

// LoadRemoteSources reads the remote source list. A missing file is an empty list.
// Entries without a repository are skipped with a warning.
func (l *Loader) LoadRemoteSources(ctx context.Context, path string) ([]domain.RemoteSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.sources", "read "+path, err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.sources", "parse "+path, errors.Join(domain.ErrInvalidConfig, err))
	}
	if err := resolvedSourcesSchema.Validate(instance); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.sources", "validate "+path, errors.Join(domain.ErrInvalidConfig, err))
	}

	var raw []rawRemoteSource
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "catalog.sources", "decode "+path, errors.Join(domain.ErrInvalidConfig, err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := make([]domain.RemoteSource, 0, len(raw))
	for i, item := range raw {
		src := domain.RemoteSource{
			Repository:   firstNonEmpty(item.Repository, item.Repo),
			Branch:       strings.TrimSpace(item.Branch),
			Subdirectory: strings.Trim(firstNonEmpty(item.Subdirectory, item.Subdir), "/"),
			Name:         strings.TrimSpace(item.Name),
			Prefix:       strings.TrimSpace(item.Prefix),
		}
		if src.Repository == "" {
			l.logger.Warn("remote source without repository skipped", zap.Int("index", i), zap.String("path", path))
			continue
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// LoadPromptsConfig reads prompts_config.json. A missing file yields the zero value.
func (l *Loader) LoadPromptsConfig(ctx context.Context, path string) (PromptsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return PromptsConfig{}, nil
		}
		return PromptsConfig{}, domain.E(domain.CodeInvalidArgument, "catalog.prompts_config", "read "+path, err)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return PromptsConfig{}, domain.E(domain.CodeInvalidArgument, "catalog.prompts_config", "parse "+path, errors.Join(domain.ErrInvalidConfig, err))
	}
	var cfg PromptsConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return PromptsConfig{}, domain.E(domain.CodeInvalidArgument, "catalog.prompts_config", "decode "+path, errors.Join(domain.ErrInvalidConfig, err))
	}
	cfg.PrefixLocal = strings.TrimSpace(cfg.PrefixLocal)
	return cfg, ctx.Err()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// FileSourceConfig re-reads the config directory on every reload cycle.
type FileSourceConfig struct {
	loader         *Loader
	dir            string
	prefixOverride string
}

var _ domain.SourceConfig = (*FileSourceConfig)(nil)

// NewFileSourceConfig builds a source config rooted at dir. A non-empty prefixOverride
// takes precedence over prefixLocal from the file.
func NewFileSourceConfig(loader *Loader, dir, prefixOverride string) *FileSourceConfig {
	return &FileSourceConfig{loader: loader, dir: dir, prefixOverride: prefixOverride}
}

// RemoteSources returns the configured sources; a broken file is logged and treated as empty.
func (c *FileSourceConfig) RemoteSources(ctx context.Context) []domain.RemoteSource {
	path := filepath.Join(c.dir, domain.RemoteSourcesFile)
	sources, err := c.loader.LoadRemoteSources(ctx, path)
	if err != nil {
		c.loader.logger.Warn("remote sources config unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return sources
}

// LocalPrefix returns the prefix applied to local prompt names.
func (c *FileSourceConfig) LocalPrefix(ctx context.Context) string {
	if c.prefixOverride != "" {
		return c.prefixOverride
	}
	path := filepath.Join(c.dir, domain.PromptsConfigFile)
	cfg, err := c.loader.LoadPromptsConfig(ctx, path)
	if err != nil {
		c.loader.logger.Warn("prompts config unreadable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return cfg.PrefixLocal
}
