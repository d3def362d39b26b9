// Package events carries cross-component notifications. Producers (test
// submission, daily-answer flow) and consumers (achievement engine) are
// decoupled by the bus rather than by direct calls, so neither needs a
// reference to the other. Delivery is synchronous and in-process;
// subscribers are expected to be idempotent against duplicates and to
// filter by the exam identifier in the payload.
package events

import (
	"sync"
	"time"
)

// TestResultSaved announces a newly persisted test result.
type TestResultSaved struct {
	ID             string
	Score          int
	TotalQuestions int
	CorrectAnswers int
	ExamType       string
}

// DailyQuestionCorrect announces a correctly answered daily question,
// carrying the authoritative streak value for the exam.
type DailyQuestionCorrect struct {
	Streak    int
	ExamType  string
	Timestamp time.Time
}

// Bus is a process-wide publish/subscribe notification hub.
type Bus struct {
	mu      sync.Mutex
	nextID  int
	results map[int]func(TestResultSaved)
	daily   map[int]func(DailyQuestionCorrect)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		results: make(map[int]func(TestResultSaved)),
		daily:   make(map[int]func(DailyQuestionCorrect)),
	}
}

// SubscribeTestResult registers fn for TestResultSaved notifications. The
// returned func cancels the subscription.
func (b *Bus) SubscribeTestResult(fn func(TestResultSaved)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.results[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.results, id)
	}
}

// SubscribeDailyCorrect registers fn for DailyQuestionCorrect notifications.
func (b *Bus) SubscribeDailyCorrect(fn func(DailyQuestionCorrect)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.daily[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.daily, id)
	}
}

// PublishTestResult delivers e to all test-result subscribers.
func (b *Bus) PublishTestResult(e TestResultSaved) {
	b.mu.Lock()
	fns := make([]func(TestResultSaved), 0, len(b.results))
	for _, fn := range b.results {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// PublishDailyCorrect delivers e to all daily-question subscribers.
func (b *Bus) PublishDailyCorrect(e DailyQuestionCorrect) {
	b.mu.Lock()
	fns := make([]func(DailyQuestionCorrect), 0, len(b.daily))
	for _, fn := range b.daily {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
