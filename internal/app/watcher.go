package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"promptd/internal/domain"
)

// Reloader is the subset of the control plane the watcher drives.
type Reloader interface {
	ReloadPrompts(ctx context.Context) (domain.PromptReloadResult, error)
	ReloadResources(ctx context.Context) (domain.ResourceReloadResult, error)
}

// DirectoryWatcher reloads prompts or resources after their directories settle.
type DirectoryWatcher struct {
	reloader     Reloader
	promptsDir   string
	resourcesDir string
	debounce     time.Duration
	logger       *zap.Logger
}

func NewDirectoryWatcher(reloader Reloader, promptsDir, resourcesDir string, debounce time.Duration, logger *zap.Logger) *DirectoryWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = domain.DefaultWatchDebounce
	}
	return &DirectoryWatcher{
		reloader:     reloader,
		promptsDir:   cleanDir(promptsDir),
		resourcesDir: cleanDir(resourcesDir),
		debounce:     debounce,
		logger:       logger.Named("watcher"),
	}
}

// Run blocks until ctx is done. Directories that do not exist are skipped.
func (w *DirectoryWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range []string{w.promptsDir, w.resourcesDir} {
		if dir == "" {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("watch directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}

	var (
		timer           *time.Timer
		pendingPrompts  bool
		pendingResource bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			prompts, resources := w.classify(event)
			if !prompts && !resources {
				continue
			}
			pendingPrompts = pendingPrompts || prompts
			pendingResource = pendingResource || resources
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerChan(timer):
			timer = nil
			if pendingPrompts {
				if _, err := w.reloader.ReloadPrompts(ctx); err != nil {
					w.logger.Warn("prompt reload failed", zap.Error(err))
				}
			}
			if pendingResource {
				if _, err := w.reloader.ReloadResources(ctx); err != nil {
					w.logger.Warn("resource reload failed", zap.Error(err))
				}
			}
			pendingPrompts, pendingResource = false, false
		}
	}
}

// classify reports which registries an event touches.
func (w *DirectoryWatcher) classify(event fsnotify.Event) (prompts, resources bool) {
	if event.Name == "" || event.Op == fsnotify.Chmod {
		return false, false
	}
	dir := filepath.Dir(event.Name)
	ext := strings.ToLower(filepath.Ext(event.Name))
	if dir == w.promptsDir && hasExt(domain.PromptExtensions, ext) {
		prompts = true
	}
	if dir == w.resourcesDir && hasExt(domain.ResourceExtensions, ext) {
		resources = true
	}
	return prompts, resources
}

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
