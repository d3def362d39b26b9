package kvstore

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is the default delay before a key change triggers a
// re-resolution. Rapid successive Rebind calls within this window coalesce
// into a single store read.
const DefaultDebounce = 150 * time.Millisecond

// Binding is a typed view of a single store key. It JSON-encodes values,
// skips writes that would not change the persisted value, falls back to a
// default on malformed data, and can follow the key as it changes (exam
// switches) and as other processes write to it.
type Binding[T any] struct {
	store    Store
	log      *zap.Logger
	def      T
	debounce time.Duration
	watcher  *Watcher

	mu         sync.Mutex
	key        string
	pendingKey string
	raw        string
	has        bool
	val        T
	loaded     bool
	timer      *time.Timer
	unwatch    func()
	external   func(T)
}

// BindingOption customizes a Binding.
type BindingOption[T any] func(*Binding[T])

// WithDebounce overrides the rebind debounce delay. Zero makes Rebind
// synchronous.
func WithDebounce[T any](d time.Duration) BindingOption[T] {
	return func(b *Binding[T]) { b.debounce = d }
}

// WithWatcher subscribes the binding to external changes of its key.
func WithWatcher[T any](w *Watcher) BindingOption[T] {
	return func(b *Binding[T]) { b.watcher = w }
}

// NewBinding creates a Binding for key, resolving the current value
// immediately. def is returned whenever the key is absent or malformed.
func NewBinding[T any](store Store, key string, def T, log *zap.Logger, opts ...BindingOption[T]) *Binding[T] {
	b := &Binding[T]{
		store:    store,
		log:      log,
		def:      def,
		debounce: DefaultDebounce,
		key:      key,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.mu.Lock()
	b.loadLocked()
	b.attachWatchLocked()
	b.mu.Unlock()
	return b
}

// Key returns the currently bound storage key.
func (b *Binding[T]) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Value returns the current value, or the default when the key is absent.
func (b *Binding[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		b.loadLocked()
	}
	return b.val
}

// Set persists v under the bound key. The write is skipped when the
// serialized form equals the last-known persisted value. Storage failures
// are logged; the in-memory mirror is updated regardless so callers never
// observe a failed update.
func (b *Binding[T]) Set(v T) {
	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error("marshal value", zap.String("key", b.Key()), zap.Error(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		b.loadLocked()
	}
	if b.has && b.raw == string(data) {
		return
	}
	if err := b.store.Set(b.key, string(data)); err != nil {
		b.log.Error("persist value", zap.String("key", b.key), zap.Error(err))
	}
	b.raw, b.has, b.val = string(data), true, v
}

// Rebind points the binding at a new key. The re-resolution is debounced:
// only the last of a rapid burst of key changes is resolved.
func (b *Binding[T]) Rebind(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pendingKey = key
	if b.debounce <= 0 {
		b.rebindNowLocked()
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.timer = nil
		b.rebindNowLocked()
	})
}

// OnExternalChange registers fn to be invoked with the decoded value when
// another process modifies the bound key. Requires WithWatcher.
func (b *Binding[T]) OnExternalChange(fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.external = fn
}

func (b *Binding[T]) rebindNowLocked() {
	if b.pendingKey == "" {
		return
	}
	b.key = b.pendingKey
	b.pendingKey = ""
	b.loadLocked()
	b.attachWatchLocked()
}

func (b *Binding[T]) loadLocked() {
	b.loaded = true
	raw, ok, err := b.store.Get(b.key)
	if err != nil {
		b.log.Warn("read key, using default", zap.String("key", b.key), zap.Error(err))
		b.raw, b.has, b.val = "", false, b.def
		return
	}
	if !ok {
		b.raw, b.has, b.val = "", false, b.def
		return
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Malformed persisted JSON counts as absent.
		b.log.Warn("malformed persisted value, using default", zap.String("key", b.key), zap.Error(err))
		b.raw, b.has, b.val = "", false, b.def
		return
	}
	b.raw, b.has, b.val = raw, true, v
}

func (b *Binding[T]) attachWatchLocked() {
	if b.watcher == nil {
		return
	}
	if b.unwatch != nil {
		b.unwatch()
	}
	b.unwatch = b.watcher.Watch(b.key, b.handleExternal)
}

func (b *Binding[T]) handleExternal(raw string, ok bool) {
	b.mu.Lock()
	if ok && raw == b.raw {
		b.mu.Unlock()
		return
	}
	switch {
	case !ok:
		b.raw, b.has, b.val = "", false, b.def
	default:
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			b.log.Warn("malformed external value, using default", zap.String("key", b.key), zap.Error(err))
			b.raw, b.has, b.val = "", false, b.def
		} else {
			b.raw, b.has, b.val = raw, true, v
		}
	}
	cb, v := b.external, b.val
	b.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}
