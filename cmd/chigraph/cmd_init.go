// SPDX-License-Identifier: MIT
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
)

// newInitCmd implements spec §6's "init: create workspace skeleton".
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a workspace skeleton at --workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := workspace.Init(flagWorkspace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized workspace at %s\n", w.Root)
			return nil
		},
	}
}
