// Package loader implements a request-scoped, deduplicating batch loader.
// It collapses per-row lookups issued while one request is being resolved
// into a bounded number of bulk fetches against the store.
package loader

import (
	"context"
	"sync"
	"time"
)

// BatchFunc performs one bulk fetch for a deduplicated key set. Keys
// absent from the returned map are legitimate ("association does not
// exist"); only the fetch itself failing is an error.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

const (
	defaultWait     = 2 * time.Millisecond
	defaultMaxBatch = 100
)

// Loader batches and caches loads for one entity kind or association.
// A Loader instance is created fresh for every incoming request and
// discarded with it; the cache never outlives the request.
//
// All Load calls arriving within one batch window (the Go equivalent of
// "before the next suspension point") share a single BatchFunc call.
// A window closes when the wait timer fires or the batch reaches
// maxBatch keys, whichever comes first. Windows dispatch in FIFO order;
// resolution order of individual keys within a window is unspecified.
type Loader[K comparable, V any] struct {
	fetch    BatchFunc[K, V]
	wait     time.Duration
	maxBatch int

	mu    sync.Mutex
	cache map[K]*thunk[V]
	batch *batch[K, V]
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	wait     time.Duration
	maxBatch int
}

// WithWait sets the batch window duration.
func WithWait(d time.Duration) Option { return func(o *options) { o.wait = d } }

// WithMaxBatch caps the number of distinct keys per dispatched batch.
func WithMaxBatch(n int) Option { return func(o *options) { o.maxBatch = n } }

// New constructs a Loader around a bulk fetch.
func New[K comparable, V any](fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	o := options{wait: defaultWait, maxBatch: defaultMaxBatch}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[K, V]{
		fetch:    fetch,
		wait:     o.wait,
		maxBatch: o.maxBatch,
		cache:    make(map[K]*thunk[V]),
	}
}

type thunk[V any] struct {
	done chan struct{}
	val  V
	ok   bool
	err  error
}

type batch[K comparable, V any] struct {
	keys    []K
	timer   *time.Timer
	started bool
}

// Load resolves one key. The returned bool reports presence: a key the
// store knows nothing about yields (zero, false, nil), never an error.
// If the bulk fetch fails, every Load waiting on that batch observes
// the same error. Repeated loads for a key already resolved within this
// instance return the cached result without touching the store.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, bool, error) {
	return l.LoadThunk(ctx, key)()
}

// LoadThunk registers the key and returns a function that blocks until
// the batch containing it has been dispatched and resolved. Callers that
// need several values from one window register all thunks first, then
// resolve them.
func (l *Loader[K, V]) LoadThunk(ctx context.Context, key K) func() (V, bool, error) {
	l.mu.Lock()
	if t, hit := l.cache[key]; hit {
		l.mu.Unlock()
		return waiter(ctx, t)
	}

	t := &thunk[V]{done: make(chan struct{})}
	l.cache[key] = t

	if l.batch == nil {
		b := &batch[K, V]{}
		l.batch = b
		// The dispatch context is detached from the caller: a client
		// disconnect must not abort an in-flight bulk fetch mid-protocol.
		// Waiters observe the cancellation instead and discard the result.
		dispatchCtx := context.WithoutCancel(ctx)
		b.timer = time.AfterFunc(l.wait, func() { l.dispatch(dispatchCtx, b) })
	}
	b := l.batch
	b.keys = append(b.keys, key)
	full := len(b.keys) >= l.maxBatch
	if full {
		// Close the window early; the timer callback becomes a no-op.
		l.batch = nil
	}
	l.mu.Unlock()

	if full {
		b.timer.Stop()
		go l.dispatch(context.WithoutCancel(ctx), b)
	}
	return waiter(ctx, t)
}

func (l *Loader[K, V]) dispatch(ctx context.Context, b *batch[K, V]) {
	l.mu.Lock()
	if b.started {
		l.mu.Unlock()
		return
	}
	b.started = true
	if l.batch == b {
		l.batch = nil
	}
	keys := b.keys
	thunks := make([]*thunk[V], len(keys))
	for i, k := range keys {
		thunks[i] = l.cache[k]
	}
	l.mu.Unlock()

	res, err := l.fetch(ctx, keys)
	for i, k := range keys {
		t := thunks[i]
		if err != nil {
			t.err = err
		} else {
			t.val, t.ok = res[k]
		}
		close(t.done)
	}
}

func waiter[V any](ctx context.Context, t *thunk[V]) func() (V, bool, error) {
	return func() (V, bool, error) {
		select {
		case <-t.done:
			return t.val, t.ok, t.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}
}
