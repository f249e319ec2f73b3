package client

import (
	"context"
	"sync"
)

// Accessor wraps a remote fetch and keeps the last successful snapshot.
// Refresh replaces the snapshot wholesale on success; on failure the
// previous snapshot stays visible and the error is returned alongside
// it. Concurrent refreshes are not coordinated, the last writer wins.
type Accessor[T any] struct {
	fetch func(context.Context) (T, error)

	mu       sync.Mutex
	snapshot T
	loaded   bool
}

func NewAccessor[T any](fetch func(context.Context) (T, error)) *Accessor[T] {
	return &Accessor[T]{fetch: fetch}
}

// Get returns the cached snapshot, fetching once if nothing is loaded
// yet.
func (a *Accessor[T]) Get(ctx context.Context) (T, error) {
	a.mu.Lock()
	if a.loaded {
		snap := a.snapshot
		a.mu.Unlock()
		return snap, nil
	}
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// Refresh always hits the backend. The fetch runs outside the lock so
// slow calls do not block readers.
func (a *Accessor[T]) Refresh(ctx context.Context) (T, error) {
	fresh, err := a.fetch(ctx)
	if err != nil {
		a.mu.Lock()
		prev := a.snapshot
		a.mu.Unlock()
		return prev, err
	}

	a.mu.Lock()
	a.snapshot = fresh
	a.loaded = true
	a.mu.Unlock()
	return fresh, nil
}

// Snapshot returns the current value without touching the network.
func (a *Accessor[T]) Snapshot() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot, a.loaded
}
