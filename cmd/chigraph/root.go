// SPDX-License-Identifier: MIT
package main

import (
	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
	"github.com/chigraph/chigraph/logx"
)

// flagWorkspace is the --workspace root persistent flag (spec §6's CLI
// contract), following liuprestin-relurpify/app/cmd/root.go's
// package-level flag-variable pattern.
var (
	flagWorkspace string
	flagLogLevel  string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chigraph",
		Short:         "Compile and run Chigraph visual-scripting graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.SetLevel(flagLogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root (or any directory beneath one)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", logx.LevelInfo, "Log level (debug, info, warn, error)")

	root.AddCommand(
		newInitCmd(),
		newGetCmd(),
		newCompileCmd(),
		newRunCmd(),
		newInterpretCmd(),
	)
	return root
}

// openWorkspace resolves flagWorkspace into a loaded Workspace, for every
// subcommand except init (which creates one).
func openWorkspace() (*workspace.Workspace, error) {
	return workspace.Load(flagWorkspace)
}
