package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/questions"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show and answer today's question",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().String("answer", "", "Answer today's question with the given letter (A-D)")
	dailyCmd.Flags().Bool("refresh", false, "Fetch a replacement question for today")
}

func runDaily(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.daily.SetExam(ctx, a.exam); err != nil {
		cmd.Printf("Could not load today's question: %v\n", err)
		cmd.Println("Run `examly daily --refresh` to try again.")
		return nil
	}

	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		if err := a.daily.RefreshQuestion(ctx); err != nil {
			return err
		}
	}

	a.engine.ApplyDailyHistory(a.daily.History())

	q := a.daily.Question()
	if q == nil {
		cmd.Println("No question available for today.")
		return nil
	}

	cmd.Printf("Daily question (%s)\n\n", a.exam.DisplayName())
	printQuestion(cmd, q)

	if choice, _ := cmd.Flags().GetString("answer"); choice != "" && !a.daily.TodayAnswered() {
		if a.daily.AnswerQuestion(choice) {
			cmd.Println("\n✅ Correct!")
		} else {
			cmd.Printf("\n❌ Incorrect. The answer was %s.\n", q.CorrectAnswer)
		}
		if q.Explanation != "" {
			cmd.Printf("\n%s\n", q.Explanation)
		}
	} else if a.daily.TodayAnswered() {
		if a.daily.TodayCorrect() {
			cmd.Println("\nAnswered today: correct ✅")
		} else {
			cmd.Println("\nAnswered today: incorrect ❌")
		}
	}

	cmd.Printf("\nCurrent streak: %d day(s)\n", a.daily.Streak())
	a.reportUnlocks(cmd)
	return nil
}

func printQuestion(cmd *cobra.Command, q *questions.Question) {
	cmd.Println(q.Text)
	cmd.Println()
	for _, opt := range q.Options() {
		cmd.Printf("  %s) %s\n", opt.Letter, opt.Text)
	}
	if tags := q.TagList(); len(tags) > 0 {
		cmd.Printf("\nCategories: %s\n", strings.Join(tags, ", "))
	}
}
