// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/chijson"
	"github.com/chigraph/chigraph/ir"
)

// newGetCmd implements spec §6's "get: fetch dependency". Chigraph has
// no package registry of its own (spec's Non-goals exclude a network
// transport), so "fetching" means validating a .chimod file found at a
// local path and recording it into the workspace under its declared
// module path, the same local-copy shape
// liuprestin-relurpify/cmd/internal/workspacecfg's agent-manifest
// install path uses.
func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <module-path> <source-file>",
		Short: "Validate and copy a .chimod file into the workspace as a dependency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modulePath, sourceFile := args[0], args[1]

			w, err := openWorkspace()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(sourceFile)
			if err != nil {
				return fmt.Errorf("get: reading %s: %w", sourceFile, err)
			}

			bctx := refbackend.NewContext()
			defer bctx.Dispose()
			ctx := ir.NewContext(bctx)
			gm, decodeResult := chijson.Decode(ctx, sourceFile, data)
			if ok := printResult(cmd.ErrOrStderr(), decodeResult); !ok {
				return errDiagnostics
			}
			if gm.Path() != modulePath {
				return fmt.Errorf("get: %s declares module path %s, not %s", sourceFile, gm.Path(), modulePath)
			}

			dest := w.SourcePath(modulePath)
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("get: mkdir %s: %w", filepath.Dir(dest), err)
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("get: writing %s: %w", dest, err)
			}
			if w.Config.Dependencies == nil {
				w.Config.Dependencies = map[string]string{}
			}
			w.Config.Dependencies[modulePath] = sourceFile
			if err := w.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s into %s\n", modulePath, w.SourcePath(modulePath))
			return nil
		},
	}
}
