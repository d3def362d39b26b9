package kvstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher polls a VersionedStore for writes made by other processes and
// notifies subscribers of changed values on watched keys. It is the local
// analog of the browser "storage" event.
type Watcher struct {
	store    VersionedStore
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	watches map[string]*keyWatch
	version int64
	nextID  int
	stop    chan struct{}
	done    chan struct{}
}

type keyWatch struct {
	last string
	has  bool
	subs map[int]func(raw string, ok bool)
}

// NewWatcher creates a Watcher polling at the given interval.
func NewWatcher(store VersionedStore, interval time.Duration, log *zap.Logger) *Watcher {
	v, err := store.DataVersion()
	if err != nil {
		log.Warn("read initial data version", zap.Error(err))
	}
	return &Watcher{
		store:    store,
		interval: interval,
		log:      log,
		watches:  make(map[string]*keyWatch),
		version:  v,
	}
}

// Watch subscribes fn to external changes of key. The returned func cancels
// the subscription. fn receives the new raw value and whether the key still
// exists.
func (w *Watcher) Watch(key string, fn func(raw string, ok bool)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kw, exists := w.watches[key]
	if !exists {
		// Seed the cache so the first poll only fires on a real change.
		raw, ok, err := w.store.Get(key)
		if err != nil {
			w.log.Warn("seed watch", zap.String("key", key), zap.Error(err))
		}
		kw = &keyWatch{last: raw, has: ok, subs: make(map[int]func(string, bool))}
		w.watches[key] = kw
	}

	w.nextID++
	id := w.nextID
	kw.subs[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if kw, ok := w.watches[key]; ok {
			delete(kw.subs, id)
			if len(kw.subs) == 0 {
				delete(w.watches, key)
			}
		}
	}
}

// Start begins background polling. Stop must be called to release the
// goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stop != nil {
		w.mu.Unlock()
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	stop, done := w.stop, w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w.Poll()
			}
		}
	}()
}

// Stop halts background polling.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
}

// Poll performs one external-change check. Exposed so tests can drive the
// watcher without the background goroutine.
func (w *Watcher) Poll() {
	v, err := w.store.DataVersion()
	if err != nil {
		w.log.Warn("poll data version", zap.Error(err))
		return
	}

	w.mu.Lock()
	if v == w.version {
		w.mu.Unlock()
		return
	}
	w.version = v

	type firing struct {
		fn  func(string, bool)
		raw string
		ok  bool
	}
	var fires []firing
	for key, kw := range w.watches {
		raw, ok, err := w.store.Get(key)
		if err != nil {
			w.log.Warn("re-read watched key", zap.String("key", key), zap.Error(err))
			continue
		}
		if raw == kw.last && ok == kw.has {
			continue
		}
		kw.last, kw.has = raw, ok
		for _, fn := range kw.subs {
			fires = append(fires, firing{fn: fn, raw: raw, ok: ok})
		}
	}
	w.mu.Unlock()

	// Invoke outside the lock so callbacks may re-enter the watcher.
	for _, f := range fires {
		f.fn(f.raw, f.ok)
	}
}
