// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/mangle"
)

// newRunCmd implements spec §6's "run: compile + JIT".
func newRunCmd() *cobra.Command {
	var (
		noCache  bool
		validate bool
		debug    bool
		entry    string
	)
	cmd := &cobra.Command{
		Use:   "run <module-path> [-- args...]",
		Short: "Compile a graph module and JIT-execute its entry function",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modulePath := args[0]
			runArgs := args[1:]

			w, err := openWorkspace()
			if err != nil {
				return err
			}
			mod, r := runCompile(w, modulePath, !noCache, validate, debug)
			if ok := printResult(cmd.ErrOrStderr(), r); !ok {
				return errDiagnostics
			}
			defer mod.Dispose()

			eng, err := mod.JIT()
			if err != nil {
				return fmt.Errorf("run: starting JIT engine: %w", err)
			}
			defer eng.Dispose()

			code, err := eng.RunMain(mangle.Mangle(modulePath, entry), append([]string{modulePath}, runArgs...), os.Environ())
			if err != nil {
				return fmt.Errorf("run: executing %s: %w", entry, err)
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the module cache")
	cmd.Flags().BoolVar(&validate, "validate", true, "Run the connection and execution-order validation checks before codegen")
	cmd.Flags().BoolVar(&debug, "debug-info", false, "Emit debug-line metadata")
	cmd.Flags().StringVar(&entry, "entry", "main", "Function name to run as the process entry point")
	return cmd
}
