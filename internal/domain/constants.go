package domain

import "time"

const (
	DefaultHTTPPort            = 4000
	DefaultSSERetryMillis      = 10000
	DefaultFetchTimeout        = 2 * time.Minute
	DefaultFetchDepth          = 1
	DefaultFetchConcurrency    = 4
	DefaultWatchDebounce       = 200 * time.Millisecond
	DefaultRemoteCacheDir      = "data/remote_prompts"
	DefaultConfigDir           = "config"
	RemoteSourcesFile          = "prompts_sources.json"
	PromptsConfigFile          = "prompts_config.json"
	ExportedPromptPrefix       = "resource_"
	MaxExportedNameLength      = 70
	ExportPreviewLength        = 120
	DefaultImplementationName  = "promptd"
	DefaultImplementationTitle = "Dynamic prompt registry"
)
