package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/afuente/examly/internal/exam"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an untimed practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, exam.ModePractice)
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a scored test session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd, exam.ModeTest)
	},
}

func init() {
	for _, c := range []*cobra.Command{practiceCmd, testCmd} {
		c.Flags().Int("count", 10, "Number of questions")
		c.Flags().StringSlice("tags", nil, "Restrict questions to these category tags")
	}
}

func runSession(cmd *cobra.Command, mode exam.Mode) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	count, _ := cmd.Flags().GetInt("count")
	tags, _ := cmd.Flags().GetStringSlice("tags")

	sess, err := exam.NewSession(cmd.Context(), a.client, a.exam, mode, count, tags)
	if err != nil {
		return err
	}
	// A new session supersedes any previously submitted exam.
	if err := exam.ClearCompleted(a.store, a.exam); err != nil {
		a.log.Warn("clear completion flag", zap.Error(err))
	}

	cmd.Printf("%s session: %d questions (%s)\n", strings.ToUpper(string(mode[:1]))+string(mode[1:]), len(sess.Questions), a.exam.DisplayName())

	reader := bufio.NewScanner(cmd.InOrStdin())
	for i := range sess.Questions {
		q := &sess.Questions[i]
		cmd.Printf("\n--- Question %d of %d ---\n\n", i+1, len(sess.Questions))
		printQuestion(cmd, q)
		cmd.Print("\nYour answer [A-D]: ")
		if !reader.Scan() {
			break
		}
		choice := strings.TrimSpace(reader.Text())
		if choice == "" {
			continue
		}
		if err := sess.Answer(q.ID, choice); err != nil {
			a.log.Warn("record answer", zap.Error(err))
			continue
		}
		if mode == exam.ModePractice {
			if q.IsCorrect(choice) {
				cmd.Println("✅ Correct!")
			} else {
				cmd.Printf("❌ Incorrect. The answer was %s.\n", q.CorrectAnswer)
			}
			if q.Explanation != "" {
				cmd.Println(q.Explanation)
			}
		}
	}

	result := sess.Finish(a.history)
	if err := exam.MarkCompleted(a.store, a.exam); err != nil {
		a.log.Warn("mark exam completed", zap.Error(err))
	}
	cmd.Printf("\nScore: %d%% (%d/%d correct)\n", result.Score, result.CorrectAnswers, result.TotalQuestions)
	a.reportUnlocks(cmd)
	return nil
}
