package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nnyyxxxx/fht-compositor/internal/config"
	"github.com/nnyyxxxx/fht-compositor/internal/rules"
)

var checkCmd = &cobra.Command{
	Use:   "check [config]",
	Short: "Validate a configuration file",
	Long: `check loads a configuration file, applies defaults, validates it and
compiles its window rules, reporting the first problem it finds. With no
argument the persistent --config flag (or the XDG default path) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if len(args) == 1 {
			path = args[0]
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		compiled, err := rules.FromConfig(cfg.WindowRules)
		if err != nil {
			return fmt.Errorf("compile window rules: %w", err)
		}
		cmd.Printf("%s: ok (%d workspaces per output, %d window rules)\n",
			path, cfg.General.WorkspaceCount, len(compiled))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
