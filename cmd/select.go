package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/examinfo"
)

var selectCmd = &cobra.Command{
	Use:   "select [exam]",
	Short: "Show or change the active exam",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		if t, ok := a.sel.Selected(); ok {
			cmd.Printf("Active exam: %s\n", t.DisplayName())
		} else {
			cmd.Printf("No exam selected, defaulting to %s\n", examinfo.DefaultType.DisplayName())
		}
		var names []string
		for _, t := range examinfo.All() {
			names = append(names, string(t))
		}
		cmd.Printf("Available: %s\n", strings.Join(names, ", "))
		return nil
	}

	t, err := examinfo.Parse(args[0])
	if err != nil {
		return err
	}
	if err := a.sel.Select(t); err != nil {
		return err
	}
	a.engine.SetExam(t)
	a.engine.RefreshDescription()
	cmd.Printf("Active exam set to %s\n", t.DisplayName())
	return nil
}
