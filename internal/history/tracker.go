package history

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/events"
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/kvstore"
)

const (
	// HistoryKey is the single shared list all exams write into. The
	// legacy "pmp-" prefix predates multi-exam support; records are
	// partitioned in-memory by their examType field instead.
	HistoryKey = "pmp-test-history"

	// ResetFlagKey requests a destructive wipe on the next load. The
	// one-shot flag mechanism is the precedent for future data
	// migrations.
	ResetFlagKey = "pmp-reset-history"

	// maxPlausibleHistory guards against a runaway-append corruption bug:
	// a list this large cannot have been produced by normal use.
	maxPlausibleHistory = 5000

	// allPerfectMin is the minimum list length before an all-perfect-score
	// history is treated as corrupt and wiped.
	allPerfectMin = 10
)

// Tracker persists completed-test records and announces each save on the
// bus.
type Tracker struct {
	store kvstore.Store
	sel   *examinfo.Selection
	bus   *events.Bus
	log   *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	cache  []TestResult
	loaded bool
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the tracker's time source for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker over the shared history key.
func NewTracker(store kvstore.Store, sel *examinfo.Selection, bus *events.Bus, log *zap.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store: store,
		sel:   sel,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SaveResult stamps partial with an ID, timestamp and the active exam, then
// appends it to the persisted history and publishes a TestResultSaved
// notification. The full list is re-read from the store first so a write
// from elsewhere between loads is not lost.
func (t *Tracker) SaveResult(partial TestResult) TestResult {
	now := t.now()
	result := partial
	result.ID = strconv.FormatInt(now.UnixMilli(), 10)
	result.Timestamp = now.UTC().Format(time.RFC3339)
	result.ExamType = string(t.sel.Current())

	t.mu.Lock()
	current := t.loadRawLocked()
	updated := append(current, result)
	t.persistLocked(updated)
	t.cache = updated
	t.loaded = true
	t.mu.Unlock()

	t.bus.PublishTestResult(events.TestResultSaved{
		ID:             result.ID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		ExamType:       result.ExamType,
	})

	return result
}

// All returns every record regardless of exam.
func (t *Tracker) All() []TestResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoadedLocked()
	out := make([]TestResult, len(t.cache))
	copy(out, t.cache)
	return out
}

// Filtered returns the records belonging to the active exam. Records
// without an examType predate exam partitioning and count as the default
// exam. With no explicit selection the full history is returned.
func (t *Tracker) Filtered() []TestResult {
	selected, ok := t.sel.Selected()
	all := t.All()
	if !ok {
		return all
	}

	var out []TestResult
	for _, r := range all {
		exam := r.ExamType
		if exam == "" {
			exam = string(examinfo.DefaultType)
		}
		if exam == string(selected) {
			out = append(out, r)
		}
	}
	return out
}

// Clear removes the active exam's records, or the entire list when no exam
// is explicitly selected.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLoadedLocked()

	selected, ok := t.sel.Selected()
	if !ok {
		if err := t.store.Delete(HistoryKey); err != nil {
			t.log.Error("clear test history", zap.Error(err))
		}
		t.cache = nil
		return
	}

	var kept []TestResult
	for _, r := range t.cache {
		exam := r.ExamType
		if exam == "" {
			exam = string(examinfo.DefaultType)
		}
		if exam != string(selected) {
			kept = append(kept, r)
		}
	}
	t.persistLocked(kept)
	t.cache = kept
}

// RequestReset sets the one-shot reset flag; the next load wipes the full
// history. Destructive, intended for development use.
func (t *Tracker) RequestReset() {
	if err := t.store.Set(ResetFlagKey, "true"); err != nil {
		t.log.Error("set reset flag", zap.Error(err))
	}
}

// Reload discards the in-memory cache and re-reads from the store.
func (t *Tracker) Reload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded = false
	t.ensureLoadedLocked()
}

func (t *Tracker) ensureLoadedLocked() {
	if t.loaded {
		return
	}
	t.cache = t.loadRawLocked()
	t.loaded = true
}

// loadRawLocked reads and validates the persisted list. Corrupt records are
// dropped; a corrupt or implausible list is wiped entirely.
func (t *Tracker) loadRawLocked() []TestResult {
	if flag, ok, _ := t.store.Get(ResetFlagKey); ok && flag == "true" {
		t.log.Info("reset flag set, wiping test history")
		t.wipeLocked()
		if err := t.store.Delete(ResetFlagKey); err != nil {
			t.log.Error("clear reset flag", zap.Error(err))
		}
		return nil
	}

	raw, ok, err := t.store.Get(HistoryKey)
	if err != nil {
		t.log.Warn("read test history", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.log.Warn("test history is not a JSON array, wiping", zap.Error(err))
		t.wipeLocked()
		return nil
	}

	if len(items) > maxPlausibleHistory {
		t.log.Warn("implausibly large test history, wiping", zap.Int("count", len(items)))
		t.wipeLocked()
		return nil
	}

	results := make([]TestResult, 0, len(items))
	dropped := 0
	allPerfect := true
	for _, item := range items {
		r, err := validateRecord(item)
		if err != nil {
			dropped++
			t.log.Warn("dropping invalid test record", zap.Error(err))
			continue
		}
		if r.Score < 100 {
			allPerfect = false
		}
		results = append(results, r)
	}
	if dropped > 0 {
		t.log.Info("dropped invalid test records", zap.Int("dropped", dropped))
	}

	if allPerfect && len(results) >= allPerfectMin {
		t.log.Warn("every test record claims a perfect score, wiping", zap.Int("count", len(results)))
		t.wipeLocked()
		return nil
	}

	return results
}

func (t *Tracker) persistLocked(results []TestResult) {
	data, err := json.Marshal(results)
	if err != nil {
		t.log.Error("marshal test history", zap.Error(err))
		return
	}
	if err := t.store.Set(HistoryKey, string(data)); err != nil {
		t.log.Error("persist test history", zap.Error(err))
	}
}

func (t *Tracker) wipeLocked() {
	if err := t.store.Delete(HistoryKey); err != nil {
		t.log.Error("wipe test history", zap.Error(err))
	}
}
