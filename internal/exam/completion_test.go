package exam

import (
	"testing"

	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/kvstore"
)

func TestCompletionFlagLifecycle(t *testing.T) {
	store := kvstore.NewMemoryStore()

	if Completed(store, examinfo.PMP) {
		t.Fatal("fresh store reports a completed exam")
	}

	if err := MarkCompleted(store, examinfo.PMP); err != nil {
		t.Fatal(err)
	}
	if !Completed(store, examinfo.PMP) {
		t.Fatal("completion flag not visible after marking")
	}
	if flag, _, _ := store.Get("pmp-exam-completed"); flag != "true" {
		t.Fatalf("persisted flag = %q, want \"true\"", flag)
	}

	// Flags are per exam.
	if Completed(store, examinfo.FCE) {
		t.Fatal("pmp completion leaked into fce")
	}

	if err := ClearCompleted(store, examinfo.PMP); err != nil {
		t.Fatal(err)
	}
	if Completed(store, examinfo.PMP) {
		t.Fatal("completion flag survived clearing")
	}
}
