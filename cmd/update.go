package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	RunE:  runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	res, err := selfupdate.NewChecker().Check(cmd.Context(), Version)
	if errors.Is(err, selfupdate.ErrDevBuild) {
		cmd.Println("Running a development build, skipping update check.")
		return nil
	}
	if err != nil {
		return err
	}

	if res.UpdateAvailable {
		cmd.Printf("Update available: %s (current %s)\n", res.LatestVersion, res.CurrentVersion)
		cmd.Println("Download: https://github.com/afuente/examly/releases/latest")
	} else {
		cmd.Printf("examly %s is up to date.\n", res.CurrentVersion)
	}
	return nil
}
