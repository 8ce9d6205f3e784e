package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptd/internal/domain"
)

func TestRegistryUpsertIfChanged(t *testing.T) {
	reg := New[string](domain.RegistryPrompts, domain.ErrPromptNotFound)
	t0 := time.Unix(1000, 0)

	entry, isNew := reg.UpsertIfChanged("hello", "/p/hello.md", t0, "v1")
	require.True(t, isNew)
	require.Equal(t, "v1", entry.Meta)

	entry, isNew = reg.UpsertIfChanged("hello", "/p/hello.md", t0, "v2")
	require.False(t, isNew)
	require.Equal(t, "v1", entry.Meta, "equal mtime must be a no-op")

	entry, isNew = reg.UpsertIfChanged("hello", "/p/hello.md", t0.Add(-time.Second), "old")
	require.False(t, isNew)
	require.Equal(t, t0, entry.ModifiedAt, "mtime never decreases")

	entry, isNew = reg.UpsertIfChanged("hello", "/p/Hello.md", t0.Add(time.Second), "v3")
	require.False(t, isNew)
	require.Equal(t, "v3", entry.Meta)
	require.Equal(t, "/p/Hello.md", entry.SourcePath)
	require.Equal(t, 1, reg.Len())
}

func TestRegistryStale(t *testing.T) {
	reg := New[int](domain.RegistryResources, domain.ErrResourceNotFound)
	t0 := time.Unix(50, 0)

	exists, changed := reg.Stale("a", t0)
	require.False(t, exists)
	require.True(t, changed)

	reg.UpsertIfChanged("a", "/a", t0, 1)
	exists, changed = reg.Stale("a", t0)
	require.True(t, exists)
	require.False(t, changed)

	_, changed = reg.Stale("a", t0.Add(time.Millisecond))
	require.True(t, changed)
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := New[int](domain.RegistryResources, domain.ErrResourceNotFound)
	_, err := reg.Get("missing")
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
	require.True(t, domain.IsNotFound(err))
	require.False(t, reg.Has("missing"))
}

func TestRegistryListKeepsInsertionOrder(t *testing.T) {
	reg := New[int](domain.RegistryPrompts, domain.ErrPromptNotFound)
	now := time.Now()
	for i, name := range []string{"zeta", "alpha", "mid"} {
		reg.UpsertIfChanged(name, "/"+name, now, i)
	}
	reg.UpsertIfChanged("alpha", "/alpha", now.Add(time.Second), 9)

	require.Equal(t, []string{"zeta", "alpha", "mid"}, reg.Names())
	list := reg.List()
	require.Len(t, list, 3)
	require.Equal(t, 9, list[1].Meta)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := New[int](domain.RegistryPrompts, domain.ErrPromptNotFound)
	base := time.Unix(0, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			reg.UpsertIfChanged("n", "/n", base.Add(time.Duration(i)), i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, e := range reg.List() {
				assert.Equal(t, base.Add(time.Duration(e.Meta)), e.ModifiedAt)
			}
		}
	}()
	wg.Wait()

	entry, err := reg.Get("n")
	require.NoError(t, err)
	require.Equal(t, 200, entry.Meta)
}
