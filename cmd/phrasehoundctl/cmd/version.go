package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huntline/phrasehound/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("phrasehoundctl %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.BuildDate)
	},
}
