package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
)

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "fht-shell",
	Short: "Drive the fht window-management core without a session",
	Long: `fht-shell exercises the window-management core headlessly: it loads
the compositor configuration, plays scenario files against the shell and
reports what the compositor would have done. Configure edge cases, window
rules and animations here before trusting them with real clients.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the compositor config (defaults to the XDG location)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace, debug, info, warn or error")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}
