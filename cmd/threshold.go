package cmd

import (
	"github.com/spf13/cobra"
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Show or set the score threshold for the active exam",
	RunE:  runThreshold,
}

func init() {
	thresholdCmd.Flags().Int("set", 0, "Set the threshold percentage (10-100)")
}

func runThreshold(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if t, _ := cmd.Flags().GetInt("set"); t != 0 {
		if err := a.engine.SetThreshold(t); err != nil {
			return err
		}
		cmd.Printf("Score threshold for %s set to %d%%\n", a.exam.DisplayName(), t)
		cmd.Println("Qualifying-test progress has been reset.")
		return nil
	}

	cmd.Printf("Score threshold for %s: %d%%\n", a.exam.DisplayName(), a.engine.Threshold())
	return nil
}
