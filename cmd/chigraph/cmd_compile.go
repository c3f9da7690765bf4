// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/cache"
	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/modcompile"
	"github.com/chigraph/chigraph/result"
)

// newCompileCmd implements spec §6's "compile: graph-module-path ->
// bitcode/text IR".
func newCompileCmd() *cobra.Command {
	var (
		emitIR   bool
		outPath  string
		noCache  bool
		validate bool
		debug    bool
	)
	cmd := &cobra.Command{
		Use:   "compile <module-path>",
		Short: "Compile a graph module to backend bitcode or text IR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modulePath := args[0]

			w, err := openWorkspace()
			if err != nil {
				return err
			}
			mod, r := runCompile(w, modulePath, !noCache, validate, debug)
			if ok := printResult(cmd.ErrOrStderr(), r); !ok {
				return errDiagnostics
			}
			defer mod.Dispose()

			var out []byte
			if emitIR {
				out = []byte(mod.Print())
			} else {
				out, err = mod.WriteBitcode()
				if err != nil {
					return fmt.Errorf("compile: writing bitcode: %w", err)
				}
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	cmd.Flags().BoolVar(&emitIR, "emit-ir", false, "Print backend-native text IR instead of bitcode")
	cmd.Flags().StringVar(&outPath, "out", "", "Write output to this file instead of stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the module cache")
	cmd.Flags().BoolVar(&validate, "validate", true, "Run the connection and execution-order validation checks before codegen")
	cmd.Flags().BoolVar(&debug, "debug-info", false, "Emit debug-line metadata")
	return cmd
}

// runCompile loads modulePath and its transitive dependencies from w,
// opens w's ModuleCache (unless useCache is false), and drives
// modcompile.Compiler over the result. Shared by compile and run.
func runCompile(w *workspace.Workspace, modulePath string, useCache, validate, debug bool) (backend.Module, *result.Result) {
	bctx := refbackend.NewContext()
	ctx := ir.NewContext(bctx)

	gm, r := workspace.LoadModule(ctx, w, modulePath)
	if gm == nil {
		return nil, r
	}

	var mc *cache.ModuleCache
	if useCache {
		c, err := cache.Open(w.CacheDBPath(), w.CacheDir())
		if err != nil {
			r.Warnf(result.CodeCacheIO, "opening module cache: %v", err)
		} else {
			mc = c
			defer mc.Close()
		}
	}

	compiler := modcompile.New(ctx, mc)
	compiler.Validate = validate
	compiler.Debug = debug
	mod, compileResult := compiler.Compile(modulePath)
	r.Merge(compileResult)
	return mod, r
}
