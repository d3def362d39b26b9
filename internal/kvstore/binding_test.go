package kvstore

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type counts struct {
	Count int `json:"count"`
}

// setCountingStore records how many writes reach the underlying store.
type setCountingStore struct {
	*MemoryStore
	sets int
}

func (s *setCountingStore) Set(key, value string) error {
	s.sets++
	return s.MemoryStore.Set(key, value)
}

func TestBindingReturnsDefaultWhenAbsent(t *testing.T) {
	store := NewMemoryStore()
	b := NewBinding(store, "missing", counts{Count: 7}, zap.NewNop())

	if got := b.Value(); got.Count != 7 {
		t.Fatalf("Value() = %+v, want default", got)
	}
}

func TestBindingLoadsPersistedValue(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("counter", `{"count":42}`); err != nil {
		t.Fatal(err)
	}

	b := NewBinding(store, "counter", counts{}, zap.NewNop())
	if got := b.Value(); got.Count != 42 {
		t.Fatalf("Value().Count = %d, want 42", got.Count)
	}
}

func TestBindingMalformedValueFallsBackToDefault(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("counter", `{"count":`); err != nil {
		t.Fatal(err)
	}

	b := NewBinding(store, "counter", counts{Count: 3}, zap.NewNop())
	if got := b.Value(); got.Count != 3 {
		t.Fatalf("Value().Count = %d, want default 3", got.Count)
	}
}

func TestBindingSetSkipsNoOpWrite(t *testing.T) {
	store := &setCountingStore{MemoryStore: NewMemoryStore()}
	b := NewBinding[counts](store, "counter", counts{}, zap.NewNop())

	b.Set(counts{Count: 1})
	b.Set(counts{Count: 1})
	b.Set(counts{Count: 1})
	if store.sets != 1 {
		t.Fatalf("store received %d writes, want 1", store.sets)
	}

	b.Set(counts{Count: 2})
	if store.sets != 2 {
		t.Fatalf("store received %d writes after change, want 2", store.sets)
	}
}

func TestBindingSetFailureStillUpdatesMirror(t *testing.T) {
	store := NewMemoryStore()
	b := NewBinding(store, "counter", counts{}, zap.NewNop())

	store.FailWrites = true
	b.Set(counts{Count: 9})

	if got := b.Value(); got.Count != 9 {
		t.Fatalf("Value().Count = %d after failed write, want 9", got.Count)
	}
	if _, ok, _ := store.Get("counter"); ok {
		t.Fatal("value was persisted despite the write failure")
	}
}

func TestBindingRebindSynchronousWithZeroDebounce(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("b", `{"count":5}`); err != nil {
		t.Fatal(err)
	}

	b := NewBinding(store, "a", counts{}, zap.NewNop(), WithDebounce[counts](0))
	b.Rebind("b")

	if got := b.Key(); got != "b" {
		t.Fatalf("Key() = %q, want \"b\"", got)
	}
	if got := b.Value(); got.Count != 5 {
		t.Fatalf("Value().Count = %d, want 5", got.Count)
	}
}

func TestBindingRebindDebounceCoalesces(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("b", `{"count":1}`); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("c", `{"count":2}`); err != nil {
		t.Fatal(err)
	}

	b := NewBinding(store, "a", counts{}, zap.NewNop(), WithDebounce[counts](20*time.Millisecond))
	b.Rebind("b")
	b.Rebind("c")

	// Still bound to the old key until the debounce fires.
	if got := b.Key(); got != "a" {
		t.Fatalf("Key() = %q before debounce, want \"a\"", got)
	}

	deadline := time.Now().Add(time.Second)
	for b.Key() != "c" {
		if time.Now().After(deadline) {
			t.Fatalf("Key() = %q, debounced rebind never fired", b.Key())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := b.Value(); got.Count != 2 {
		t.Fatalf("Value().Count = %d, want value of last rebound key", got.Count)
	}
}

func TestBindingExternalChangeNotifies(t *testing.T) {
	store := NewMemoryStore()
	w := NewWatcher(store, time.Hour, zap.NewNop())
	b := NewBinding(store, "counter", counts{}, zap.NewNop(), WithWatcher[counts](w))

	var got []counts
	b.OnExternalChange(func(v counts) { got = append(got, v) })

	// The binding's own write must not be reported as external.
	b.Set(counts{Count: 1})
	w.Poll()
	if len(got) != 0 {
		t.Fatalf("own write reported as external: %v", got)
	}

	store.ExternalSet("counter", `{"count":8}`)
	w.Poll()
	if len(got) != 1 || got[0].Count != 8 {
		t.Fatalf("external change callbacks = %v, want one call with Count 8", got)
	}
	if v := b.Value(); v.Count != 8 {
		t.Fatalf("Value().Count = %d after external change, want 8", v.Count)
	}
}

func TestBindingExternalDeleteFallsBackToDefault(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("counter", `{"count":4}`); err != nil {
		t.Fatal(err)
	}
	w := NewWatcher(store, time.Hour, zap.NewNop())
	b := NewBinding(store, "counter", counts{Count: 11}, zap.NewNop(), WithWatcher[counts](w))

	var got []counts
	b.OnExternalChange(func(v counts) { got = append(got, v) })

	store.ExternalDelete("counter")
	w.Poll()

	if len(got) != 1 || got[0].Count != 11 {
		t.Fatalf("callbacks = %v, want one call with the default", got)
	}
}
