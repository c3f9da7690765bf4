// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/mangle"
)

// newInterpretCmd implements spec §6's "interpret: bitcode -> JIT",
// skipping modcompile entirely — it loads a previously compiled bitcode
// file directly and executes it.
func newInterpretCmd() *cobra.Command {
	var (
		modulePath string
		entry      string
	)
	cmd := &cobra.Command{
		Use:   "interpret <bitcode-file> [-- args...]",
		Short: "JIT-execute a previously compiled bitcode file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bcPath := args[0]
			runArgs := args[1:]

			data, err := os.ReadFile(bcPath)
			if err != nil {
				return fmt.Errorf("interpret: reading %s: %w", bcPath, err)
			}

			bctx := refbackend.NewContext()
			defer bctx.Dispose()

			mod, err := bctx.ParseBitcode(data)
			if err != nil {
				return fmt.Errorf("interpret: parsing bitcode: %w", err)
			}
			defer mod.Dispose()

			eng, err := mod.JIT()
			if err != nil {
				return fmt.Errorf("interpret: starting JIT engine: %w", err)
			}
			defer eng.Dispose()

			code, err := eng.RunMain(mangle.Mangle(modulePath, entry), append([]string{bcPath}, runArgs...), os.Environ())
			if err != nil {
				return fmt.Errorf("interpret: executing %s: %w", entry, err)
			}
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modulePath, "module", "", "Module path the entry function was mangled under")
	cmd.Flags().StringVar(&entry, "entry", "main", "Function name to run as the process entry point")
	return cmd
}
