package modelcache

import (
	"context"
	"sync"
)

// Loader loads the value for a key. It is invoked at most once per distinct
// key at a time; a failed invocation may be repeated by a later GetOrLoad.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache memoizes values produced by a Loader, keyed by K.
type Cache[K comparable, V any] struct {
	loader  Loader[K, V]
	mu      sync.Mutex
	entries map[K]*entry[V]
}

type entry[V any] struct {
	ready chan struct{} // closed when value or err is set
	value V
	err   error
}

// New creates an empty Cache backed by the given loader.
func New[K comparable, V any](loader Loader[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		loader:  loader,
		entries: make(map[K]*entry[V]),
	}
}

// GetOrLoad returns the cached value for key, loading it on first demand.
//
// The check-and-insert on the entry map is the only exclusive section; the
// load itself runs outside the lock, so loads for distinct keys never
// serialize each other and already-loaded entries return immediately.
// Concurrent callers for an in-flight key wait for the ongoing load and
// share its outcome. On failure the key is removed before waiters are
// released, so the failure is never visible as a present entry.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{ready: make(chan struct{})}
		c.entries[key] = e
	}
	c.mu.Unlock()

	if ok {
		select {
		case <-e.ready:
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
		return e.value, e.err
	}

	value, err := c.loader(ctx, key)
	if err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		e.err = err
		close(e.ready)
		var zero V
		return zero, err
	}

	e.value = value
	close(e.ready)
	return value, nil
}

// Len returns the number of entries, counting in-flight loads.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
