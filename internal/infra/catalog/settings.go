package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// AuthSettings configures the HTTP front end gate.
type AuthSettings struct {
	Type          string
	Token         string
	JWTSecret     string
	LeewaySeconds int
}

// Settings is the process configuration resolved from defaults, an optional config file
// and the environment, in increasing order of precedence.
type Settings struct {
	PromptsDir               string
	ResourcesDir             string
	ConfigDir                string
	CacheDir                 string
	LocalPrefix              string
	ExportResourcesAsPrompts bool
	HTTPPort                 int
	FetchTimeout             time.Duration
	FetchDepth               int
	FetchConcurrency         int
	GitAuthToken             string
	Watch                    bool
	LogLevel                 string
	Auth                     AuthSettings
}

type rawSettings struct {
	PromptsDir               string          `mapstructure:"promptsDir"`
	ResourcesDir             string          `mapstructure:"resourcesDir"`
	ConfigDir                string          `mapstructure:"configDir"`
	CacheDir                 string          `mapstructure:"cacheDir"`
	LocalPrefix              string          `mapstructure:"localPrefix"`
	ExportResourcesAsPrompts string          `mapstructure:"exportResourcesAsPrompts"`
	HTTPPort                 int             `mapstructure:"httpPort"`
	FetchTimeoutSeconds      int             `mapstructure:"fetchTimeoutSeconds"`
	FetchDepth               int             `mapstructure:"fetchDepth"`
	FetchConcurrency         int             `mapstructure:"fetchConcurrency"`
	GitAuthToken             string          `mapstructure:"gitAuthToken"`
	Watch                    bool            `mapstructure:"watch"`
	LogLevel                 string          `mapstructure:"logLevel"`
	Auth                     rawAuthSettings `mapstructure:"auth"`
}

type rawAuthSettings struct {
	Type          string `mapstructure:"type"`
	Token         string `mapstructure:"token"`
	JWTSecret     string `mapstructure:"jwtSecret"`
	LeewaySeconds int    `mapstructure:"leewaySeconds"`
}

var envBindings = map[string]string{
	"promptsDir":               "PROMPTS_DIR",
	"resourcesDir":             "RESOURCES_DIR",
	"localPrefix":              "PROMPTS_LOCAL_PREFIX",
	"exportResourcesAsPrompts": "EXPORT_RESOURCES_AS_PROMPTS",
	"httpPort":                 "SSE_PORT",
	"configDir":                "PROMPTD_CONFIG_DIR",
	"cacheDir":                 "PROMPTD_CACHE_DIR",
	"fetchTimeoutSeconds":      "PROMPTD_FETCH_TIMEOUT_SECONDS",
	"fetchDepth":               "PROMPTD_FETCH_DEPTH",
	"fetchConcurrency":         "PROMPTD_FETCH_CONCURRENCY",
	"gitAuthToken":             "GIT_AUTH_TOKEN",
	"watch":                    "PROMPTD_WATCH",
	"logLevel":                 "PROMPTD_LOG_LEVEL",
	"auth.type":                "AUTH_TYPE",
	"auth.token":               "AUTH_TOKEN",
	"auth.jwtSecret":           "JWT_SECRET",
	"auth.leewaySeconds":       "AUTH_LEEWAY",
}

func newSettingsViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("configDir", domain.DefaultConfigDir)
	v.SetDefault("cacheDir", domain.DefaultRemoteCacheDir)
	v.SetDefault("exportResourcesAsPrompts", "true")
	v.SetDefault("httpPort", domain.DefaultHTTPPort)
	v.SetDefault("fetchTimeoutSeconds", int(domain.DefaultFetchTimeout/time.Second))
	v.SetDefault("fetchDepth", domain.DefaultFetchDepth)
	v.SetDefault("fetchConcurrency", domain.DefaultFetchConcurrency)
	v.SetDefault("watch", false)
	v.SetDefault("logLevel", "info")
	v.SetDefault("auth.leewaySeconds", 0)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadSettings resolves the process settings. configFile is optional; ${VAR}
// references inside it are expanded from the environment.
func (l *Loader) LoadSettings(ctx context.Context, configFile string) (Settings, error) {
	v := newSettingsViper()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return Settings{}, domain.E(domain.CodeInvalidArgument, "catalog.settings", "read config", err)
		}
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return Settings{}, domain.E(domain.CodeInvalidArgument, "catalog.settings", "", err)
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", configFile), zap.Strings("missing", missing))
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
			return Settings{}, domain.E(domain.CodeInvalidArgument, "catalog.settings", "parse config", err)
		}
	}

	var raw rawSettings
	if err := v.Unmarshal(&raw); err != nil {
		return Settings{}, domain.E(domain.CodeInvalidArgument, "catalog.settings", "decode config", err)
	}
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	return l.normalizeSettings(raw)
}

func (l *Loader) normalizeSettings(raw rawSettings) (Settings, error) {
	var problems []string
	if raw.HTTPPort <= 0 || raw.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("httpPort %d out of range", raw.HTTPPort))
	}
	if raw.FetchTimeoutSeconds <= 0 {
		problems = append(problems, "fetchTimeoutSeconds must be positive")
	}
	authType := strings.ToLower(strings.TrimSpace(raw.Auth.Type))
	switch authType {
	case "", "static", "jwt":
	default:
		problems = append(problems, fmt.Sprintf("auth.type %q must be static or jwt", raw.Auth.Type))
	}
	if raw.Auth.LeewaySeconds < 0 {
		problems = append(problems, "auth.leewaySeconds must not be negative")
	}
	if len(problems) > 0 {
		return Settings{}, domain.E(domain.CodeInvalidArgument, "catalog.settings", strings.Join(problems, "; "), domain.ErrInvalidConfig)
	}

	depth := raw.FetchDepth
	if depth <= 0 {
		depth = domain.DefaultFetchDepth
	}
	concurrency := raw.FetchConcurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultFetchConcurrency
	}

	return Settings{
		PromptsDir:               resolveDir(raw.PromptsDir, promptDirCandidates, l.searchRoots()),
		ResourcesDir:             resolveDir(raw.ResourcesDir, resourceDirCandidates, l.searchRoots()),
		ConfigDir:                raw.ConfigDir,
		CacheDir:                 raw.CacheDir,
		LocalPrefix:              strings.TrimSpace(raw.LocalPrefix),
		ExportResourcesAsPrompts: ParseToggle(raw.ExportResourcesAsPrompts, true),
		HTTPPort:                 raw.HTTPPort,
		FetchTimeout:             time.Duration(raw.FetchTimeoutSeconds) * time.Second,
		FetchDepth:               depth,
		FetchConcurrency:         concurrency,
		GitAuthToken:             raw.GitAuthToken,
		Watch:                    raw.Watch,
		LogLevel:                 raw.LogLevel,
		Auth: AuthSettings{
			Type:          authType,
			Token:         raw.Auth.Token,
			JWTSecret:     raw.Auth.JWTSecret,
			LeewaySeconds: raw.Auth.LeewaySeconds,
		},
	}, nil
}

// ParseToggle reads an on/off flag where only "0", "false" and "no" switch it off.
func ParseToggle(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback
	case "0", "false", "no":
		return false
	default:
		return true
	}
}

var (
	promptDirCandidates   = []string{"data/prompts", "node-mcp/data/prompts"}
	resourceDirCandidates = []string{"data/ressources", "data/resources", "node-mcp/data/ressources", "node-mcp/data/resources"}
)

func (l *Loader) searchRoots() []string {
	roots := make([]string, 0, 2)
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	return roots
}

// resolveDir returns override when set, else the first existing candidate, else the
// first candidate under the first root.
func resolveDir(override string, candidates, roots []string) string {
	if strings.TrimSpace(override) != "" {
		if abs, err := filepath.Abs(override); err == nil {
			return abs
		}
		return override
	}
	for _, root := range roots {
		for _, candidate := range candidates {
			dir := filepath.Join(root, candidate)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}
	if len(roots) == 0 {
		return candidates[0]
	}
	return filepath.Join(roots[0], candidates[0])
}
