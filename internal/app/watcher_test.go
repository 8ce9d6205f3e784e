package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"promptd/internal/domain"
)

type countingReloader struct {
	prompts   atomic.Int32
	resources atomic.Int32
}

func (r *countingReloader) ReloadPrompts(context.Context) (domain.PromptReloadResult, error) {
	r.prompts.Add(1)
	return domain.PromptReloadResult{}, nil
}

func (r *countingReloader) ReloadResources(context.Context) (domain.ResourceReloadResult, error) {
	r.resources.Add(1)
	return domain.ResourceReloadResult{}, nil
}

func TestDirectoryWatcherDebouncesReloads(t *testing.T) {
	promptsDir := t.TempDir()
	resourcesDir := t.TempDir()
	reloader := &countingReloader{}
	w := NewDirectoryWatcher(reloader, promptsDir, resourcesDir, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// fsnotify registers the watch asynchronously from Run's point of view.
	require.Eventually(t, func() bool {
		path := filepath.Join(promptsDir, "hello.md")
		_ = os.WriteFile(path, []byte("# hi"), 0o644)
		return reloader.prompts.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)
	require.Zero(t, reloader.resources.Load())

	require.NoError(t, os.WriteFile(filepath.Join(resourcesDir, "notes.json"), []byte("{}"), 0o644))
	require.Eventually(t, func() bool { return reloader.resources.Load() > 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestDirectoryWatcherClassify(t *testing.T) {
	w := NewDirectoryWatcher(&countingReloader{}, "/data/prompts", "/data/resources", 0, nil)
	cases := []struct {
		name      string
		event     fsnotify.Event
		prompts   bool
		resources bool
	}{
		{"prompt markdown", fsnotify.Event{Name: "/data/prompts/a.md", Op: fsnotify.Write}, true, false},
		{"prompt text ignored", fsnotify.Event{Name: "/data/prompts/a.txt", Op: fsnotify.Create}, false, false},
		{"resource json", fsnotify.Event{Name: "/data/resources/a.JSON", Op: fsnotify.Create}, false, true},
		{"chmod ignored", fsnotify.Event{Name: "/data/prompts/a.md", Op: fsnotify.Chmod}, false, false},
		{"other dir", fsnotify.Event{Name: "/tmp/a.md", Op: fsnotify.Write}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, r := w.classify(tc.event)
			require.Equal(t, tc.prompts, p)
			require.Equal(t, tc.resources, r)
		})
	}
}
