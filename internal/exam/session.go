// Package exam runs full practice and test sessions against the question
// source and scores them locally.
package exam

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/history"
	"github.com/afuente/examly/internal/questions"
)

// Mode distinguishes untimed practice from timed test sessions.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeTest     Mode = "test"
)

// Fetcher retrieves a question set from the question source.
type Fetcher interface {
	FetchSet(ctx context.Context, exam examinfo.Type, n int, tags []string) ([]questions.Question, error)
}

// Session is one run through a set of questions.
type Session struct {
	ID        string
	Exam      examinfo.Type
	Mode      Mode
	Questions []questions.Question

	answers map[string]string
}

// NewSession fetches count questions for exam, optionally filtered by
// category tags, and starts a session over them.
func NewSession(ctx context.Context, fetcher Fetcher, exam examinfo.Type, mode Mode, count int, tags []string) (*Session, error) {
	qs, err := fetcher.FetchSet(ctx, exam, count, tags)
	if err != nil {
		return nil, fmt.Errorf("start %s session: %w", mode, err)
	}
	return &Session{
		ID:        uuid.NewString(),
		Exam:      exam,
		Mode:      mode,
		Questions: qs,
		answers:   make(map[string]string),
	}, nil
}

// Answer records the user's choice for a question. Re-answering replaces
// the previous choice.
func (s *Session) Answer(questionID, choice string) error {
	for _, q := range s.Questions {
		if q.ID == questionID {
			s.answers[questionID] = choice
			return nil
		}
	}
	return fmt.Errorf("question %q is not part of this session", questionID)
}

// Answered returns how many questions have an answer.
func (s *Session) Answered() int {
	return len(s.answers)
}

// Score returns the percentage score (rounded) and the correct-answer
// count over all questions; unanswered questions count as incorrect.
func (s *Session) Score() (percent, correct int) {
	for _, q := range s.Questions {
		if choice, ok := s.answers[q.ID]; ok && q.IsCorrect(choice) {
			correct++
		}
	}
	if len(s.Questions) == 0 {
		return 0, 0
	}
	percent = int(math.Round(float64(correct) * 100 / float64(len(s.Questions))))
	return percent, correct
}

// Finish scores the session and saves it to the test history, returning
// the stamped result. The result's tags are the union of the questions'
// category tags.
func (s *Session) Finish(tracker *history.Tracker) history.TestResult {
	percent, correct := s.Score()
	return tracker.SaveResult(history.TestResult{
		Score:          percent,
		TotalQuestions: len(s.Questions),
		CorrectAnswers: correct,
		TestType:       string(s.Mode),
		Tags:           s.tagUnion(),
	})
}

func (s *Session) tagUnion() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, q := range s.Questions {
		for _, t := range q.TagList() {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}
