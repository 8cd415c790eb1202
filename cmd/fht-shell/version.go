package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at build time through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fht-shell version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fht-shell %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
