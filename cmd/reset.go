package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/afuente/examly/internal/exam"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored data",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().Bool("history", false, "Wipe the whole test history on the next load")
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if hist, _ := cmd.Flags().GetBool("history"); hist {
		a.history.RequestReset()
		a.history.Reload()
		if err := exam.ClearCompleted(a.store, a.exam); err != nil {
			a.log.Warn("clear completion flag", zap.Error(err))
		}
		cmd.Println("Test history wiped.")
		return nil
	}

	cmd.Println("Nothing to reset. See `examly reset --help` for options.")
	return nil
}
