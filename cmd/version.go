package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the examly version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("examly %s\n", Version)
	},
}
