package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/events"
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/kvstore"
)

func newTestTracker(store kvstore.Store) (*Tracker, *examinfo.Selection, *events.Bus) {
	sel := examinfo.NewSelection(store, zap.NewNop())
	bus := events.NewBus()
	clock := func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	}
	return NewTracker(store, sel, bus, zap.NewNop(), WithClock(clock)), sel, bus
}

func validRecord(id string, score int, examType string) string {
	exam := ""
	if examType != "" {
		exam = fmt.Sprintf(`,"examType":%q`, examType)
	}
	return fmt.Sprintf(`{"id":%q,"date":"2026-08-27T10:00:00Z","score":%d,"totalQuestions":10,"correctAnswers":%d,"testType":"test","tags":[]%s}`,
		id, score, score/10, exam)
}

func TestSaveResultStampsAndPublishes(t *testing.T) {
	store := kvstore.NewMemoryStore()
	tr, _, bus := newTestTracker(store)

	var got []events.TestResultSaved
	bus.SubscribeTestResult(func(e events.TestResultSaved) { got = append(got, e) })

	saved := tr.SaveResult(TestResult{Score: 80, TotalQuestions: 10, CorrectAnswers: 8, TestType: "test", Tags: []string{"Quality"}})

	if saved.ID == "" {
		t.Error("saved result has no ID")
	}
	if saved.Timestamp != "2026-08-28T12:00:00Z" {
		t.Errorf("Timestamp = %q", saved.Timestamp)
	}
	if saved.ExamType != "pmp" {
		t.Errorf("ExamType = %q, want default pmp", saved.ExamType)
	}

	if len(got) != 1 {
		t.Fatalf("published %d notifications, want 1", len(got))
	}
	if got[0].ID != saved.ID || got[0].Score != 80 || got[0].ExamType != "pmp" {
		t.Errorf("notification = %+v", got[0])
	}

	raw, ok, _ := store.Get(HistoryKey)
	if !ok {
		t.Fatal("history was not persisted")
	}
	var persisted []TestResult
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 1 || persisted[0].ID != saved.ID {
		t.Errorf("persisted = %+v", persisted)
	}
}

func TestFilteredPartitionsByExam(t *testing.T) {
	store := kvstore.NewMemoryStore()
	// Two pmp records, one fce record, one legacy record without examType.
	list := "[" + strings.Join([]string{
		validRecord("1", 70, "pmp"),
		validRecord("2", 80, "fce"),
		validRecord("3", 90, "pmp"),
		validRecord("4", 60, ""),
	}, ",") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, sel, _ := newTestTracker(store)

	if err := sel.Select(examinfo.PMP); err != nil {
		t.Fatal(err)
	}
	got := tr.Filtered()
	if len(got) != 3 {
		t.Fatalf("pmp Filtered() returned %d records, want 3 (legacy counts as pmp)", len(got))
	}

	if err := sel.Select(examinfo.FCE); err != nil {
		t.Fatal(err)
	}
	got = tr.Filtered()
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("fce Filtered() = %+v, want only record 2", got)
	}
}

func TestFilteredWithoutSelectionReturnsAll(t *testing.T) {
	store := kvstore.NewMemoryStore()
	list := "[" + validRecord("1", 70, "pmp") + "," + validRecord("2", 80, "fce") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	if got := tr.Filtered(); len(got) != 2 {
		t.Fatalf("Filtered() = %d records with no selection, want all 2", len(got))
	}
}

func TestClearRemovesOnlyActiveExam(t *testing.T) {
	store := kvstore.NewMemoryStore()
	list := "[" + validRecord("1", 70, "pmp") + "," + validRecord("2", 80, "fce") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, sel, _ := newTestTracker(store)
	if err := sel.Select(examinfo.PMP); err != nil {
		t.Fatal(err)
	}
	tr.Clear()

	all := tr.All()
	if len(all) != 1 || all[0].ID != "2" {
		t.Fatalf("All() after pmp clear = %+v, want only fce record", all)
	}
}

func TestClearWithoutSelectionDeletesEverything(t *testing.T) {
	store := kvstore.NewMemoryStore()
	list := "[" + validRecord("1", 70, "pmp") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	tr.Clear()

	if _, ok, _ := store.Get(HistoryKey); ok {
		t.Fatal("history key still present after global clear")
	}
	if got := tr.All(); len(got) != 0 {
		t.Fatalf("All() = %+v after global clear", got)
	}
}

func TestLoadDropsInvalidRecords(t *testing.T) {
	store := kvstore.NewMemoryStore()
	outOfRange := `{"id":"bad","date":"2026-08-27T10:00:00Z","score":150,"totalQuestions":10,"correctAnswers":8,"testType":"test","tags":[]}`
	missingField := `{"id":"bad2","score":50}`
	tooManyCorrect := `{"id":"bad3","date":"2026-08-27T10:00:00Z","score":50,"totalQuestions":5,"correctAnswers":9,"testType":"test","tags":[]}`
	list := "[" + strings.Join([]string{validRecord("ok", 70, "pmp"), outOfRange, missingField, tooManyCorrect}, ",") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	got := tr.All()
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("All() = %+v, want only the valid record", got)
	}
}

func TestNonArrayHistoryIsWiped(t *testing.T) {
	store := kvstore.NewMemoryStore()
	if err := store.Set(HistoryKey, `{"not":"an array"}`); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	if got := tr.All(); len(got) != 0 {
		t.Fatalf("All() = %+v, want empty", got)
	}
	if _, ok, _ := store.Get(HistoryKey); ok {
		t.Fatal("corrupt history key was not wiped")
	}
}

func TestImplausiblyLargeHistoryIsWiped(t *testing.T) {
	store := kvstore.NewMemoryStore()
	records := make([]string, maxPlausibleHistory+1)
	for i := range records {
		records[i] = validRecord(fmt.Sprintf("r%d", i), 50, "pmp")
	}
	if err := store.Set(HistoryKey, "["+strings.Join(records, ",")+"]"); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	if got := tr.All(); len(got) != 0 {
		t.Fatalf("All() returned %d records, want wipe", len(got))
	}
}

func TestAllPerfectHistoryIsWiped(t *testing.T) {
	store := kvstore.NewMemoryStore()
	records := make([]string, allPerfectMin)
	for i := range records {
		records[i] = validRecord(fmt.Sprintf("r%d", i), 100, "pmp")
	}
	if err := store.Set(HistoryKey, "["+strings.Join(records, ",")+"]"); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	if got := tr.All(); len(got) != 0 {
		t.Fatalf("All() returned %d records, want wipe", len(got))
	}
}

func TestShortAllPerfectHistorySurvives(t *testing.T) {
	store := kvstore.NewMemoryStore()
	list := "[" + validRecord("1", 100, "pmp") + "," + validRecord("2", 100, "pmp") + "]"
	if err := store.Set(HistoryKey, list); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	if got := tr.All(); len(got) != 2 {
		t.Fatalf("All() = %d records, want 2 (short perfect lists are legitimate)", len(got))
	}
}

func TestResetFlagWipesOnNextLoad(t *testing.T) {
	store := kvstore.NewMemoryStore()
	if err := store.Set(HistoryKey, "["+validRecord("1", 70, "pmp")+"]"); err != nil {
		t.Fatal(err)
	}

	tr, _, _ := newTestTracker(store)
	tr.RequestReset()
	tr.Reload()

	if got := tr.All(); len(got) != 0 {
		t.Fatalf("All() = %+v after reset, want empty", got)
	}
	if _, ok, _ := store.Get(HistoryKey); ok {
		t.Fatal("history key survived the reset")
	}
	if _, ok, _ := store.Get(ResetFlagKey); ok {
		t.Fatal("reset flag was not cleared")
	}
}
