package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phrasehoundctl",
	Short: "phrasehound tuning tools",
	Long:  "Offline phrase matching against pasted text, for tuning gap tolerance and the fuzzy threshold.",

	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(versionCmd)
}
