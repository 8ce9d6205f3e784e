package domain

import "context"

// DefaultRemoteBranch is used when a remote source does not name a branch.
const DefaultRemoteBranch = "main"

// RemoteSource describes a git repository contributing prompts.
type RemoteSource struct {
	Repository   string `json:"repository"`
	Branch       string `json:"branch,omitempty"`
	Subdirectory string `json:"subdirectory,omitempty"`
	Name         string `json:"name,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
}

// BranchOrDefault returns the configured branch or DefaultRemoteBranch.
func (s RemoteSource) BranchOrDefault() string {
	if s.Branch == "" {
		return DefaultRemoteBranch
	}
	return s.Branch
}

// CacheKey names the local cache directory for the source.
func (s RemoteSource) CacheKey() string {
	base := s.Name
	if base == "" {
		base = s.Repository
	}
	if s.Subdirectory != "" {
		base += "_" + s.Subdirectory
	}
	return SanitizeName(base)
}

// Label identifies the source in logs and metrics.
func (s RemoteSource) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Repository
}

// SourceFetcher materializes a remote source into a local directory.
type SourceFetcher interface {
	Fetch(ctx context.Context, src RemoteSource) (string, error)
}

// SourceConfig supplies the per reload configuration of the prompt loader.
type SourceConfig interface {
	RemoteSources(ctx context.Context) []RemoteSource
	LocalPrefix(ctx context.Context) string
}
