// Package loader provides request-scoped, batching and caching readers over
// the repositories. One set of loaders lives for the duration of a single
// GraphQL request.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"docsgraph/internal/domain"

	"golang.org/x/sync/singleflight"
)

// BatchFunc fetches every existing value among keys. Keys absent from the
// returned map are treated as not found.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

type entry[V any] struct {
	value V
	err   error
}

// Loader caches values by key for its lifetime. Successful loads and
// not-found results are cached; any other error is returned to the caller
// and the key stays uncached. Concurrent loads of one key share a fetch.
type Loader[K comparable, V any] struct {
	name  string
	batch BatchFunc[K, V]
	group singleflight.Group

	mu    sync.Mutex
	cache map[K]entry[V]
}

// New creates a loader. name is used in not-found errors.
func New[K comparable, V any](name string, batch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{
		name:  name,
		batch: batch,
		cache: make(map[K]entry[V]),
	}
}

// Load returns the value for key, or an error wrapping domain.ErrNotFound.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	if e, ok := l.lookup(key); ok {
		return e.value, e.err
	}

	res, err, _ := l.group.Do(fmt.Sprint(key), func() (any, error) {
		if e, ok := l.lookup(key); ok {
			return e, nil
		}
		found, err := l.batch(ctx, []K{key})
		if err != nil {
			return nil, err
		}
		return l.store(key, found), nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	e := res.(entry[V])
	return e.value, e.err
}

// LoadMany returns values in key order with one batch call for every uncached
// key. Missing keys yield the zero value.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, error) {
	missing := make([]K, 0, len(keys))
	seen := make(map[K]bool, len(keys))
	for _, key := range keys {
		if _, ok := l.lookup(key); !ok && !seen[key] {
			missing = append(missing, key)
			seen[key] = true
		}
	}

	if len(missing) > 0 {
		found, err := l.batch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, key := range missing {
			l.store(key, found)
		}
	}

	values := make([]V, len(keys))
	for i, key := range keys {
		if e, ok := l.lookup(key); ok && e.err == nil {
			values[i] = e.value
		}
	}
	return values, nil
}

// Prime caches value for key unless the key already holds a value, and
// returns whichever value is cached afterwards.
func (l *Loader[K, V]) Prime(key K, value V) V {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[key]; ok && e.err == nil {
		return e.value
	}
	l.cache[key] = entry[V]{value: value}
	return value
}

// Set caches value for key, replacing any previous entry.
func (l *Loader[K, V]) Set(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = entry[V]{value: value}
}

// Clear drops key from the cache.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}

func (l *Loader[K, V]) lookup(key K) (entry[V], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.cache[key]
	return e, ok
}

// store records the batch outcome for key. Another writer may have set the
// key meanwhile; the cached entry wins so callers share one value.
func (l *Loader[K, V]) store(key K, found map[K]V) entry[V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.cache[key]; ok {
		return e
	}
	e := entry[V]{}
	if v, ok := found[key]; ok {
		e.value = v
	} else {
		e.err = fmt.Errorf("%s %v: %w", l.name, key, domain.ErrNotFound)
	}
	l.cache[key] = e
	return e
}

// IsNotFound reports whether err is a not-found result from a loader or
// repository.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
