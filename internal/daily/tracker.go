// Package daily maintains one question-attempt record per calendar day per
// exam and the consecutive-correct-day streak derived from them.
package daily

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/events"
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/kvstore"
	"github.com/afuente/examly/internal/questions"
)

// historyKeySuffix is namespaced per exam, e.g. "pmp-daily-questions".
const historyKeySuffix = "daily-questions"

// Fetcher retrieves a single question from the question source.
type Fetcher interface {
	FetchOne(ctx context.Context, exam examinfo.Type, excludeIDs []string) (*questions.Question, error)
}

// Record is one day's question attempt. Created unanswered; answered
// exactly once.
type Record struct {
	Date       string             `json:"date"` // YYYY-MM-DD
	QuestionID string             `json:"questionId"`
	Question   questions.Question `json:"question"`
	Answered   bool               `json:"answered"`
	Correct    bool               `json:"correct"`
}

// Tracker runs the daily-question state machine for the active exam.
type Tracker struct {
	store   kvstore.Store
	fetcher Fetcher
	bus     *events.Bus
	log     *zap.Logger
	now     func() time.Time

	mu            sync.Mutex
	exam          examinfo.Type
	history       []Record
	streak        int
	question      *questions.Question
	todayAnswered bool
	todayCorrect  bool
	loading       bool
	err           error

	// gen invalidates in-flight fetches: a completion whose generation no
	// longer matches is for a context that has since changed and must be
	// discarded.
	gen    int
	cancel context.CancelFunc
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the tracker's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker. SetExam must be called before use.
func NewTracker(store kvstore.Store, fetcher Fetcher, bus *events.Bus, log *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:   store,
		fetcher: fetcher,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetExam switches the tracker to exam: any in-flight fetch for the
// previous exam is cancelled, in-memory state is fully reset, the per-exam
// history is loaded, and a question for today is fetched if none exists
// yet. A completion for a superseded exam never writes into the new state.
func (t *Tracker) SetExam(ctx context.Context, exam examinfo.Type) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	fctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.exam = exam
	t.history = nil
	t.streak = 0
	t.question = nil
	t.todayAnswered = false
	t.todayCorrect = false
	t.err = nil

	t.loadHistoryLocked()
	today := t.today()
	todayRec := t.recordForLocked(today)
	if todayRec != nil {
		q := todayRec.Question
		t.question = &q
		t.todayAnswered = todayRec.Answered
		t.todayCorrect = todayRec.Correct
		t.loading = false
		t.mu.Unlock()
		return nil
	}

	exclude := make([]string, 0, len(t.history))
	for _, r := range t.history {
		exclude = append(exclude, r.QuestionID)
	}
	t.loading = true
	t.mu.Unlock()

	q, err := t.fetcher.FetchOne(fctx, exam, exclude)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		// The exam changed while this fetch was in flight; discard.
		return nil
	}
	t.loading = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		t.err = err
		t.log.Warn("fetch daily question", zap.String("exam", string(exam)), zap.Error(err))
		return err
	}

	rec := Record{
		Date:       today,
		QuestionID: q.ID,
		Question:   *q,
		Answered:   false,
		Correct:    false,
	}
	t.history = append(t.history, rec)
	t.persistLocked()
	t.question = q
	return nil
}

// AnswerQuestion records the user's answer for today. Returns correctness;
// returns false without effect when today is already answered or no
// question is loaded. A correct answer publishes a DailyQuestionCorrect
// notification carrying the new streak.
func (t *Tracker) AnswerQuestion(choice string) bool {
	t.mu.Lock()
	if t.question == nil || t.todayAnswered {
		t.mu.Unlock()
		return false
	}

	correct := t.question.IsCorrect(choice)
	today := t.today()
	for i := range t.history {
		if t.history[i].Date == today {
			t.history[i].Answered = true
			t.history[i].Correct = correct
		}
	}
	t.streak = computeStreak(t.history)
	t.todayAnswered = true
	t.todayCorrect = correct
	t.persistLocked()

	exam := t.exam
	streak := t.streak
	now := t.now()
	t.mu.Unlock()

	if correct {
		t.bus.PublishDailyCorrect(events.DailyQuestionCorrect{
			Streak:    streak,
			ExamType:  string(exam),
			Timestamp: now,
		})
	}
	return correct
}

// RefreshQuestion force-fetches a replacement question for today, resetting
// today's record to unanswered. History for other days is preserved. Used
// after a fetch failure or when the user wants a different question.
func (t *Tracker) RefreshQuestion(ctx context.Context) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	fctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	exam := t.exam
	t.loading = true
	t.err = nil
	t.mu.Unlock()

	q, err := t.fetcher.FetchOne(fctx, exam, nil)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return nil
	}
	t.loading = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		t.err = err
		t.log.Warn("refresh daily question", zap.String("exam", string(exam)), zap.Error(err))
		return err
	}

	today := t.today()
	replaced := false
	for i := range t.history {
		if t.history[i].Date == today {
			t.history[i].QuestionID = q.ID
			t.history[i].Question = *q
			t.history[i].Answered = false
			t.history[i].Correct = false
			replaced = true
		}
	}
	if !replaced {
		t.history = append(t.history, Record{
			Date:       today,
			QuestionID: q.ID,
			Question:   *q,
		})
	}
	t.persistLocked()
	t.question = q
	t.todayAnswered = false
	t.todayCorrect = false
	t.streak = computeStreak(t.history)
	return nil
}

// Question returns the loaded question for today, or nil.
func (t *Tracker) Question() *questions.Question {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.question
}

// Streak returns the current consecutive-correct-day streak.
func (t *Tracker) Streak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streak
}

// TodayAnswered reports whether today's question has been answered.
func (t *Tracker) TodayAnswered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.todayAnswered
}

// TodayCorrect reports whether today's answer was correct.
func (t *Tracker) TodayCorrect() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.todayCorrect
}

// History returns a copy of the loaded per-exam records.
func (t *Tracker) History() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.history))
	copy(out, t.history)
	return out
}

// Err returns the last fetch error. The rest of the loaded state is
// untouched by a failed fetch, so the caller can retry via RefreshQuestion.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Loading reports whether a fetch is in flight.
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Tracker) today() string {
	return t.now().Format("2006-01-02")
}

func (t *Tracker) historyKey() string {
	return t.exam.Key(historyKeySuffix)
}

func (t *Tracker) recordForLocked(date string) *Record {
	for i := range t.history {
		if t.history[i].Date == date {
			return &t.history[i]
		}
	}
	return nil
}

func (t *Tracker) loadHistoryLocked() {
	raw, ok, err := t.store.Get(t.historyKey())
	if err != nil {
		t.log.Warn("read daily history", zap.String("key", t.historyKey()), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// Corrupt history is wiped and treated as empty.
		t.log.Warn("malformed daily history, wiping", zap.String("key", t.historyKey()), zap.Error(err))
		if err := t.store.Delete(t.historyKey()); err != nil {
			t.log.Error("wipe daily history", zap.Error(err))
		}
		return
	}
	t.history = records
	t.streak = computeStreak(records)
}

func (t *Tracker) persistLocked() {
	data, err := json.Marshal(t.history)
	if err != nil {
		t.log.Error("marshal daily history", zap.Error(err))
		return
	}
	if err := t.store.Set(t.historyKey(), string(data)); err != nil {
		t.log.Error("persist daily history", zap.Error(err))
	}
}

func computeStreak(records []Record) int {
	return StreakOf(records)
}

// StreakOf counts consecutive answered-and-correct records starting from
// the most recent date, stopping at the first record failing the predicate.
func StreakOf(records []Record) int {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	// YYYY-MM-DD sorts chronologically as a string.
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })

	streak := 0
	for _, r := range sorted {
		if r.Answered && r.Correct {
			streak++
		} else {
			break
		}
	}
	return streak
}
