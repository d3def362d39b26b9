package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past test results for the active exam",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Bool("clear", false, "Delete the active exam's history")
	historyCmd.Flags().Bool("all", false, "Show results for every exam")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if clear, _ := cmd.Flags().GetBool("clear"); clear {
		a.history.Clear()
		cmd.Printf("History cleared for %s\n", a.exam.DisplayName())
		return nil
	}

	results := a.history.Filtered()
	if all, _ := cmd.Flags().GetBool("all"); all {
		results = a.history.All()
	}
	if len(results) == 0 {
		cmd.Println("No test results yet.")
		return nil
	}

	for _, r := range results {
		when := r.Timestamp
		if t, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
			when = t.Local().Format("2006-01-02 15:04")
		}
		line := []string{
			when,
			strings.ToUpper(r.TestType),
		}
		if r.ExamType != "" {
			line = append(line, strings.ToUpper(r.ExamType))
		}
		cmd.Printf("%s  %d%% (%d/%d)", strings.Join(line, "  "), r.Score, r.CorrectAnswers, r.TotalQuestions)
		if len(r.Tags) > 0 {
			cmd.Printf("  [%s]", strings.Join(r.Tags, ", "))
		}
		cmd.Println()
	}
	return nil
}
