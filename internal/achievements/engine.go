// Package achievements coordinates the three gamified progress trackers:
// the exam-agnostic app-usage streak, the per-exam daily-question streak,
// and the per-exam score-threshold counter.
package achievements

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/afuente/examly/internal/daily"
	"github.com/afuente/examly/internal/events"
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/history"
	"github.com/afuente/examly/internal/kvstore"
)

const (
	// DefaultThreshold is the score-threshold target before the user
	// configures one.
	DefaultThreshold = 60
	// MinThreshold and MaxThreshold bound the configurable target.
	MinThreshold = 10
	MaxThreshold = 100

	// DefaultUnlockTTL is how long an unlock stays in the newly-unlocked
	// set for celebration display.
	DefaultUnlockTTL = 5 * time.Second

	appUsageSuffix     = "achievement-app-usage"
	dailySuffix        = "achievement-daily-question"
	scoreSuffix        = "achievement-score-threshold"
	thresholdSuffix    = "score-threshold"
	lastUsageSuffix    = "last-usage-date"
	unlockedSuffix     = "achievement-unlocked"
	unlockedTypeSuffix = "achievement-type-unlocked"
)

// State is a snapshot of all achievement progress for rendering.
type State struct {
	AppUsageStreak      Achievement
	DailyQuestionStreak Achievement
	TestScoreThreshold  Achievement
	ScoreThreshold      int
}

// Engine maintains achievement state, reacting to bus notifications from
// the test-submission and daily-answer flows and persisting progress
// through per-key bindings.
type Engine struct {
	store     kvstore.Store
	sel       *examinfo.Selection
	bus       *events.Bus
	log       *zap.Logger
	now       func() time.Time
	unlockTTL time.Duration
	debounce  time.Duration
	watcher   *kvstore.Watcher

	appUsage    *kvstore.Binding[Achievement]
	dailyStreak *kvstore.Binding[Achievement]
	scoreThresh *kvstore.Binding[Achievement]
	threshold   *kvstore.Binding[int]

	mu             sync.Mutex
	newlyUnlocked  map[string]time.Time
	lastResultID   string
	lastResultExam string
	usageChecked   bool
	historyApplied bool
	unsubs         []func()
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithUnlockTTL overrides how long unlocks stay in the newly-unlocked set.
func WithUnlockTTL(d time.Duration) Option {
	return func(e *Engine) { e.unlockTTL = d }
}

// WithDebounce overrides the binding rebind debounce.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithWatcher subscribes the engine's bindings to external store changes.
func WithWatcher(w *kvstore.Watcher) Option {
	return func(e *Engine) { e.watcher = w }
}

// NewEngine creates an Engine bound to the active exam's keys and
// subscribes it to the notification bus.
func NewEngine(store kvstore.Store, sel *examinfo.Selection, bus *events.Bus, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		sel:           sel,
		bus:           bus,
		log:           log,
		now:           time.Now,
		unlockTTL:     DefaultUnlockTTL,
		debounce:      kvstore.DefaultDebounce,
		newlyUnlocked: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(e)
	}

	exam := sel.Current()
	e.appUsage = e.newAchievementBinding(examinfo.GlobalKey(appUsageSuffix), defaultAppUsageStreak())
	e.dailyStreak = e.newAchievementBinding(exam.Key(dailySuffix), defaultDailyQuestionStreak())
	e.scoreThresh = e.newAchievementBinding(exam.Key(scoreSuffix), defaultScoreThreshold(DefaultThreshold))

	thresholdOpts := []kvstore.BindingOption[int]{kvstore.WithDebounce[int](e.debounce)}
	if e.watcher != nil {
		thresholdOpts = append(thresholdOpts, kvstore.WithWatcher[int](e.watcher))
	}
	e.threshold = kvstore.NewBinding(store, exam.Key(thresholdSuffix), DefaultThreshold, log, thresholdOpts...)

	e.unsubs = append(e.unsubs,
		bus.SubscribeDailyCorrect(e.handleDailyCorrect),
		bus.SubscribeTestResult(e.handleTestResult),
	)
	return e
}

func (e *Engine) newAchievementBinding(key string, def Achievement) *kvstore.Binding[Achievement] {
	opts := []kvstore.BindingOption[Achievement]{kvstore.WithDebounce[Achievement](e.debounce)}
	if e.watcher != nil {
		opts = append(opts, kvstore.WithWatcher[Achievement](e.watcher))
	}
	return kvstore.NewBinding(e.store, key, def, e.log, opts...)
}

// Close unsubscribes the engine from the bus.
func (e *Engine) Close() {
	for _, unsub := range e.unsubs {
		unsub()
	}
}

// SetExam repoints the per-exam bindings at the new exam's keys. The
// re-reads are debounced so rapid successive switches coalesce.
func (e *Engine) SetExam(exam examinfo.Type) {
	e.dailyStreak.Rebind(exam.Key(dailySuffix))
	e.scoreThresh.Rebind(exam.Key(scoreSuffix))
	e.threshold.Rebind(exam.Key(thresholdSuffix))

	e.mu.Lock()
	e.historyApplied = false
	e.mu.Unlock()
}

// Achievements returns a snapshot of all progress.
func (e *Engine) Achievements() State {
	return State{
		AppUsageStreak:      e.appUsage.Value(),
		DailyQuestionStreak: e.dailyStreak.Value(),
		TestScoreThreshold:  e.scoreThresh.Value(),
		ScoreThreshold:      e.Threshold(),
	}
}

// Threshold returns the configured score threshold, clamped to its valid
// range.
func (e *Engine) Threshold() int {
	t := e.threshold.Value()
	if t < MinThreshold || t > MaxThreshold {
		return DefaultThreshold
	}
	return t
}

// SetThreshold updates the configured score threshold and resets the
// score-threshold achievement to its zero state for the active exam,
// preserving the historical completion count.
func (e *Engine) SetThreshold(t int) error {
	if t < MinThreshold || t > MaxThreshold {
		return fmt.Errorf("score threshold must be between %d and %d, got %d", MinThreshold, MaxThreshold, t)
	}
	e.threshold.Set(t)

	cur := e.scoreThresh.Value()
	reset := defaultScoreThreshold(t)
	reset.CompletedLevels = cur.CompletedLevels
	e.scoreThresh.Set(reset)
	return nil
}

// RefreshDescription re-embeds the configured threshold into the
// score-threshold achievement description. Called after an exam switch in
// case the persisted description predates a threshold change.
func (e *Engine) RefreshDescription() {
	want := scoreDescription(e.Threshold())
	cur := e.scoreThresh.Value()
	if cur.Description != want {
		cur.Description = want
		e.scoreThresh.Set(cur)
	}
}

// CheckAppUsage updates the exam-agnostic app-usage streak, at most once
// per process and at most once per calendar day: a visit exactly one day
// after the last recorded usage extends the streak, a longer gap resets it
// to 1, a same-day visit is a no-op. The last-usage date is always
// rewritten.
func (e *Engine) CheckAppUsage() {
	e.mu.Lock()
	if e.usageChecked {
		e.mu.Unlock()
		return
	}
	e.usageChecked = true
	e.mu.Unlock()

	key := examinfo.GlobalKey(lastUsageSuffix)
	today := e.now().Format("2006-01-02")

	last, ok, err := e.store.Get(key)
	if err != nil {
		e.log.Warn("read last usage date", zap.Error(err))
	}
	if ok && last == today {
		return
	}
	if err := e.store.Set(key, today); err != nil {
		e.log.Error("write last usage date", zap.Error(err))
	}

	if !ok || last == "" {
		e.updateStreak(e.appUsage, UnlockAppUsage, 1, true)
		return
	}

	lastDate, err := time.Parse("2006-01-02", last)
	if err != nil {
		e.log.Warn("malformed last usage date, restarting streak", zap.String("value", last))
		e.updateStreak(e.appUsage, UnlockAppUsage, 1, true)
		return
	}
	todayDate, _ := time.Parse("2006-01-02", today)

	switch days := int(todayDate.Sub(lastDate).Hours() / 24); {
	case days == 1:
		e.updateStreak(e.appUsage, UnlockAppUsage, e.appUsage.Value().CurrentValue+1, true)
	case days > 1:
		e.updateStreak(e.appUsage, UnlockAppUsage, 1, true)
	}
}

// ApplyDailyHistory recomputes the daily-question streak from the full
// per-exam record list. Called whenever the loaded history changes; an
// empty list recomputes to zero, so a wiped history resets the streak.
func (e *Engine) ApplyDailyHistory(records []daily.Record) {
	e.updateStreak(e.dailyStreak, UnlockDailyQuestion, daily.StreakOf(records), false)
}

// ApplyTestHistory bulk-recomputes the score-threshold count from the
// active exam's persisted results. Skipped once the achievement is
// completed — including the wrapped re-lap state, whose counter must not
// be snapped back to the target by a restart — and applied at most once
// per exam context, so live notifications remain the only incremental
// feed.
func (e *Engine) ApplyTestHistory(results []history.TestResult) {
	e.mu.Lock()
	if e.historyApplied {
		e.mu.Unlock()
		return
	}
	e.historyApplied = true
	e.mu.Unlock()

	cur := e.scoreThresh.Value()
	if cur.IsCompleted {
		return
	}

	threshold := e.Threshold()
	count := 0
	for _, r := range results {
		if r.Score >= threshold {
			count++
		}
	}
	if count == 0 {
		return
	}
	if count > ScoreTarget {
		count = ScoreTarget
	}
	e.setScoreCount(count)
}

// NewlyUnlocked returns the achievement types unlocked within the last
// unlock TTL, for celebration display.
func (e *Engine) NewlyUnlocked() []string {
	now := e.now()
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []string
	for id, expiry := range e.newlyUnlocked {
		if now.Before(expiry) {
			out = append(out, id)
		} else {
			delete(e.newlyUnlocked, id)
		}
	}
	sort.Strings(out)
	return out
}

// PendingUnlock reports an achievement unlock persisted by a previous
// process run, clearing the flags (clear-on-read). Checks the active
// exam's namespace and the global namespace.
func (e *Engine) PendingUnlock() (string, bool) {
	exam := e.sel.Current()
	for _, prefix := range []string{exam.Key(""), examinfo.GlobalKey("")} {
		flagKey := prefix + unlockedSuffix
		typeKey := prefix + unlockedTypeSuffix

		flag, ok, err := e.store.Get(flagKey)
		if err != nil {
			e.log.Warn("read unlock flag", zap.String("key", flagKey), zap.Error(err))
			continue
		}
		if !ok || flag != "true" {
			continue
		}
		id, _, _ := e.store.Get(typeKey)
		if err := e.store.Delete(flagKey); err != nil {
			e.log.Error("clear unlock flag", zap.Error(err))
		}
		if err := e.store.Delete(typeKey); err != nil {
			e.log.Error("clear unlock type flag", zap.Error(err))
		}
		if id != "" {
			return id, true
		}
	}
	return "", false
}

func (e *Engine) handleDailyCorrect(ev events.DailyQuestionCorrect) {
	// Notifications for an exam other than the active one are ignored.
	if ev.ExamType != string(e.sel.Current()) {
		return
	}
	e.updateStreak(e.dailyStreak, UnlockDailyQuestion, ev.Streak, false)
}

func (e *Engine) handleTestResult(ev events.TestResultSaved) {
	e.mu.Lock()
	if ev.ID == e.lastResultID && ev.ExamType == e.lastResultExam {
		// Duplicate delivery.
		e.mu.Unlock()
		return
	}
	e.lastResultID, e.lastResultExam = ev.ID, ev.ExamType
	e.mu.Unlock()

	if ev.ExamType != "" && ev.ExamType != string(e.sel.Current()) {
		return
	}
	if ev.Score < e.Threshold() {
		return
	}

	cur := e.scoreThresh.Value()
	if cur.IsCompleted && cur.CurrentCount >= ScoreTarget {
		// Re-lap: the visible counter wraps back to 1 so progress always
		// reads out of the target.
		e.setScoreCount(1)
		return
	}
	e.setScoreCount(cur.CurrentCount + 1)
}

// setScoreCount applies a new qualifying-test count to the score-threshold
// achievement. CompletedLevels increments each time the count reaches the
// target; the unlock celebration fires only on the first completion.
func (e *Engine) setScoreCount(count int) {
	cur := e.scoreThresh.Value()
	a := cur
	a.CurrentValue = count
	a.CurrentCount = count

	reachedTarget := count >= ScoreTarget && cur.CurrentCount < ScoreTarget
	if reachedTarget {
		a.CompletedLevels = cur.CompletedLevels + 1
		a.CurrentLevel = 1
		now := e.now()
		a.LastUnlocked = &now
	}
	if reachedTarget && !cur.IsCompleted {
		e.fireUnlock(UnlockScoreThreshold, false)
	}
	a.IsCompleted = cur.IsCompleted || count >= ScoreTarget
	e.scoreThresh.Set(a)
}

// updateStreak applies the generic leveling rule to a streak achievement.
// Level-up fires when the level strictly increases, or when the value
// reaches the first threshold while the achievement was not completed
// before this update; once completed, re-crossing the first threshold does
// not re-fire.
func (e *Engine) updateStreak(b *kvstore.Binding[Achievement], unlockID string, v int, global bool) {
	cur := b.Value()
	level := LevelFor(v)

	a := cur
	a.CurrentValue = v
	a.CurrentLevel = level
	a.NextLevel = NextThreshold(v)
	a.IsCompleted = v >= FirstLevel()

	if v >= FirstLevel() && !cur.IsCompleted {
		a.CompletedLevels = cur.CompletedLevels + 1
	}

	leveledUp := level > cur.CurrentLevel || (v >= FirstLevel() && !cur.IsCompleted)
	if leveledUp {
		now := e.now()
		a.LastUnlocked = &now
		e.fireUnlock(unlockID, global)
	}
	b.Set(a)
}

// fireUnlock records the unlock in the transient newly-unlocked set and
// persists the cross-run signaling flags so a later process run can pick
// the unlock up.
func (e *Engine) fireUnlock(unlockID string, global bool) {
	e.mu.Lock()
	e.newlyUnlocked[unlockID] = e.now().Add(e.unlockTTL)
	e.mu.Unlock()

	prefix := e.sel.Current().Key("")
	if global {
		prefix = examinfo.GlobalKey("")
	}
	if err := e.store.Set(prefix+unlockedSuffix, "true"); err != nil {
		e.log.Error("persist unlock flag", zap.Error(err))
	}
	if err := e.store.Set(prefix+unlockedTypeSuffix, unlockID); err != nil {
		e.log.Error("persist unlock type flag", zap.Error(err))
	}
}
