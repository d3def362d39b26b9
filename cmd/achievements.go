package cmd

import (
	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/achievements"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress for the active exam",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.engine.Achievements()

	cmd.Printf("Achievements (%s)\n\n", a.exam.DisplayName())
	printStreak(cmd, state.AppUsageStreak)
	printStreak(cmd, state.DailyQuestionStreak)
	printScore(cmd, state.TestScoreThreshold)
	a.reportUnlocks(cmd)
	return nil
}

func printStreak(cmd *cobra.Command, ach achievements.Achievement) {
	cmd.Printf("%s — %s\n", ach.Name, ach.Description)
	cmd.Printf("  %d day(s), level %d/%d", ach.CurrentValue, ach.CurrentLevel, len(achievements.Levels))
	if ach.IsCompleted {
		cmd.Print(" ✅")
	}
	// Completed streaks keep climbing the level table, so the hint stays
	// until the top level.
	if ach.CurrentLevel < len(achievements.Levels) {
		cmd.Printf(", next level at %d", ach.NextLevel)
	}
	if ach.CompletedLevels > 0 {
		cmd.Printf(" (completed %dx)", ach.CompletedLevels)
	}
	cmd.Println()
}

func printScore(cmd *cobra.Command, ach achievements.Achievement) {
	cmd.Printf("%s — %s\n", ach.Name, ach.Description)
	cmd.Printf("  %d of %d qualifying tests", ach.CurrentCount, ach.TargetCount)
	if ach.IsCompleted {
		cmd.Print(" ✅")
	}
	if ach.CompletedLevels > 0 {
		cmd.Printf(" (completed %dx)", ach.CompletedLevels)
	}
	cmd.Println()
}
