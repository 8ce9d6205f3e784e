package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promptd/internal/domain"
)

type recordingSink struct {
	mu       sync.Mutex
	defs     []domain.PromptDefinition
	handlers map[string]domain.Handler
	failWith error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{handlers: make(map[string]domain.Handler)}
}

func (s *recordingSink) RegisterPrompt(def domain.PromptDefinition, handler domain.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.handlers[def.Name]; ok {
		return domain.ErrAlreadyRegistered
	}
	s.defs = append(s.defs, def)
	s.handlers[def.Name] = handler
	return nil
}

func (s *recordingSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.defs)
}

func (s *recordingSink) render(t *testing.T, name string, args map[string]string) domain.Transcript {
	t.Helper()
	s.mu.Lock()
	handler, ok := s.handlers[name]
	s.mu.Unlock()
	require.True(t, ok, "prompt %q not registered", name)
	out, err := handler.Render(context.Background(), args)
	require.NoError(t, err)
	return out
}

type staticConfig struct {
	prefix  string
	sources []domain.RemoteSource
}

func (c staticConfig) RemoteSources(context.Context) []domain.RemoteSource { return c.sources }
func (c staticConfig) LocalPrefix(context.Context) string                  { return c.prefix }

type mapFetcher struct {
	dirs map[string]string
}

func (f mapFetcher) Fetch(_ context.Context, src domain.RemoteSource) (string, error) {
	dir, ok := f.dirs[src.Repository]
	if !ok {
		return "", errors.Join(domain.ErrFetchFailed, errors.New("unreachable"))
	}
	return dir, nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// touch moves the mtime of path forward by d.
func touch(t *testing.T, path string, d time.Duration) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	mod := info.ModTime().Add(d)
	require.NoError(t, os.Chtimes(path, mod, mod))
}
