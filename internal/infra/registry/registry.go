package registry

import (
	"sync"
	"time"

	"promptd/internal/domain"
)

// Entry is one named item backed by a file on disk.
type Entry[T any] struct {
	Name       string
	SourcePath string
	ModifiedAt time.Time
	Meta       T
}

// Registry is an append/update-only, insertion ordered name index.
type Registry[T any] struct {
	mu       sync.RWMutex
	entries  map[string]Entry[T]
	order    []string
	notFound error
	op       string
}

// New creates an empty registry. notFound is the sentinel wrapped by Get on a miss.
func New[T any](kind domain.RegistryKind, notFound error) *Registry[T] {
	return &Registry[T]{
		entries:  make(map[string]Entry[T]),
		notFound: notFound,
		op:       string(kind) + ".get",
	}
}

// Stale reports whether name exists and whether modifiedAt is newer than the stored entry.
// A missing name is always changed.
func (r *Registry[T]) Stale(name string, modifiedAt time.Time) (exists bool, changed bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.entries[name]
	if !ok {
		return false, true
	}
	return true, modifiedAt.After(existing.ModifiedAt)
}

// UpsertIfChanged stores the entry unless the stored one is at least as recent.
// isNew is true only when the name was not present before.
func (r *Registry[T]) UpsertIfChanged(name, sourcePath string, modifiedAt time.Time, meta T) (Entry[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[name]
	if ok && !modifiedAt.After(existing.ModifiedAt) {
		return existing, false
	}
	entry := Entry[T]{
		Name:       name,
		SourcePath: sourcePath,
		ModifiedAt: modifiedAt,
		Meta:       meta,
	}
	r.entries[name] = entry
	if !ok {
		r.order = append(r.order, name)
	}
	return entry, !ok
}

// Get returns the entry for name or a NOT_FOUND error.
func (r *Registry[T]) Get(name string) (Entry[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return Entry[T]{}, domain.NotFound(r.op, r.notFound, name)
	}
	return entry, nil
}

// Has reports whether name is present.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// List returns a snapshot in insertion order.
func (r *Registry[T]) List() []Entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry[T], 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Names returns entry names in insertion order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
