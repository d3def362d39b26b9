package achievements

import (
	"fmt"
	"time"
)

// Unlock type identifiers, persisted in the {namespace}-achievement-type-
// unlocked flag and reported in the newly-unlocked set.
const (
	UnlockAppUsage       = "appUsageStreak"
	UnlockDailyQuestion  = "dailyQuestionStreak"
	UnlockScoreThreshold = "testScoreThreshold"
)

// ScoreTarget is the number of qualifying tests that completes the
// score-threshold achievement. The displayed count always reads out of
// this target.
const ScoreTarget = 3

// Achievement is a tracked, leveled counter. JSON field names match the
// legacy persisted format.
type Achievement struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CurrentValue int        `json:"currentValue"`
	NextLevel    int        `json:"nextLevel"`
	MaxLevel     int        `json:"maxLevel"`
	CurrentLevel int        `json:"currentLevel"`
	IsCompleted  bool       `json:"isCompleted"`
	LastUnlocked *time.Time `json:"lastUnlocked"`

	// TargetCount and CurrentCount are used only by the score-threshold
	// achievement.
	TargetCount  int `json:"targetCount,omitempty"`
	CurrentCount int `json:"currentCount,omitempty"`

	// CompletedLevels counts full completions historically, surviving
	// streak re-laps and threshold changes.
	CompletedLevels int `json:"completedLevels,omitempty"`
}

func defaultAppUsageStreak() Achievement {
	return Achievement{
		ID:          "app-usage-streak",
		Name:        "App Usage Streak",
		Description: "Use the app for consecutive days",
		NextLevel:   FirstLevel(),
		MaxLevel:    MaxLevel(),
	}
}

func defaultDailyQuestionStreak() Achievement {
	return Achievement{
		ID:          "daily-question-streak",
		Name:        "Daily Question Streak",
		Description: "Answer daily questions correctly for consecutive days",
		NextLevel:   FirstLevel(),
		MaxLevel:    MaxLevel(),
	}
}

func defaultScoreThreshold(threshold int) Achievement {
	return Achievement{
		ID:          "test-score-threshold",
		Name:        "Score Threshold",
		Description: scoreDescription(threshold),
		NextLevel:   ScoreTarget,
		MaxLevel:    ScoreTarget,
		TargetCount: ScoreTarget,
	}
}

func scoreDescription(threshold int) string {
	return fmt.Sprintf("Complete %d tests with scores above your target threshold (%d%%)", ScoreTarget, threshold)
}
