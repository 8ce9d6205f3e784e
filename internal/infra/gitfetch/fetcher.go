package gitfetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// Options configures a Fetcher.
type Options struct {
	CacheDir  string
	Depth     int
	Timeout   time.Duration
	AuthToken string
}

// Fetcher keeps one shallow clone per remote source under CacheDir.
type Fetcher struct {
	opts   Options
	logger *zap.Logger
}

var _ domain.SourceFetcher = (*Fetcher)(nil)

// New creates a Fetcher, filling zero options with defaults.
func New(opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheDir == "" {
		opts.CacheDir = domain.DefaultRemoteCacheDir
	}
	if opts.Depth <= 0 {
		opts.Depth = domain.DefaultFetchDepth
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultFetchTimeout
	}
	return &Fetcher{opts: opts, logger: logger.Named("gitfetch")}
}

// Fetch clones or fast-forwards the source and returns the directory holding its prompts.
// A failed pull leaves the existing clone untouched.
func (f *Fetcher) Fetch(ctx context.Context, src domain.RemoteSource) (string, error) {
	if strings.TrimSpace(src.Repository) == "" {
		return "", fetchErr(src, domain.ErrInvalidConfig, "repository must not be empty")
	}
	key := src.CacheKey()
	if key == "" {
		return "", fetchErr(src, domain.ErrInvalidConfig, "cache key is empty")
	}
	if err := os.MkdirAll(f.opts.CacheDir, 0o755); err != nil {
		return "", fetchErr(src, err, "create cache dir")
	}
	target := filepath.Join(f.opts.CacheDir, key)

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	logger := f.logger.With(zap.String("source", src.Label()), zap.String("path", target))
	if repo, err := git.PlainOpen(target); err == nil {
		if err := f.pull(ctx, repo, src); err != nil {
			return "", fetchErr(src, err, "pull")
		}
		logger.Debug("remote source updated")
	} else {
		if err := resetTarget(target); err != nil {
			return "", fetchErr(src, err, "reset cache dir")
		}
		if err := f.clone(ctx, target, src); err != nil {
			return "", fetchErr(src, err, "clone")
		}
		logger.Info("remote source cloned", zap.String("branch", src.BranchOrDefault()))
	}

	dir := target
	if src.Subdirectory != "" {
		dir = filepath.Join(target, filepath.FromSlash(src.Subdirectory))
		rel, err := filepath.Rel(target, dir)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fetchErr(src, domain.ErrInvalidConfig, "subdirectory escapes clone")
		}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fetchErr(src, domain.ErrDirectoryMissing, "subdirectory "+src.Subdirectory+" not found")
	}
	return dir, nil
}

func (f *Fetcher) pull(ctx context.Context, repo *git.Repository, src domain.RemoteSource) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(src.BranchOrDefault()),
		SingleBranch:  true,
		Depth:         f.opts.Depth,
		Auth:          f.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (f *Fetcher) clone(ctx context.Context, target string, src domain.RemoteSource) error {
	_, err := git.PlainCloneContext(ctx, target, false, &git.CloneOptions{
		URL:           src.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(src.BranchOrDefault()),
		SingleBranch:  true,
		Depth:         f.opts.Depth,
		Auth:          f.auth(),
	})
	if err != nil {
		_ = os.RemoveAll(target)
		return err
	}
	return nil
}

func (f *Fetcher) auth() transport.AuthMethod {
	if f.opts.AuthToken == "" {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: f.opts.AuthToken}
}

// resetTarget removes a non-empty directory that is not a clone.
func resetTarget(target string) error {
	entries, err := os.ReadDir(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return os.RemoveAll(target)
}

func fetchErr(src domain.RemoteSource, cause error, msg string) error {
	return &domain.Error{
		Code:    domain.CodeUnavailable,
		Op:      "gitfetch.fetch",
		Message: fmt.Sprintf("%s: %s: %v", src.Label(), msg, cause),
		Cause:   fmt.Errorf("%w: %w", domain.ErrFetchFailed, cause),
		Meta:    map[string]string{"repository": src.Repository},
	}
}
