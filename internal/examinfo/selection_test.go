package examinfo

import (
	"testing"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/kvstore"
)

func TestSelectionRoundTrip(t *testing.T) {
	store := kvstore.NewMemoryStore()
	sel := NewSelection(store, zap.NewNop())

	if _, ok := sel.Selected(); ok {
		t.Fatal("Selected() reported a selection on an empty store")
	}
	if got := sel.Current(); got != DefaultType {
		t.Fatalf("Current() = %q with no selection, want default %q", got, DefaultType)
	}

	if err := sel.Select(FCE); err != nil {
		t.Fatal(err)
	}
	got, ok := sel.Selected()
	if !ok || got != FCE {
		t.Fatalf("Selected() = %q, %v, want fce, true", got, ok)
	}
	if got := sel.Current(); got != FCE {
		t.Fatalf("Current() = %q, want fce", got)
	}
}

func TestSelectionIgnoresUnknownPersistedValue(t *testing.T) {
	store := kvstore.NewMemoryStore()
	if err := store.Set(SelectionKey, "toefl"); err != nil {
		t.Fatal(err)
	}

	sel := NewSelection(store, zap.NewNop())
	if _, ok := sel.Selected(); ok {
		t.Fatal("unknown persisted exam counted as a selection")
	}
	if got := sel.Current(); got != DefaultType {
		t.Fatalf("Current() = %q, want default", got)
	}
}
