// SPDX-License-Identifier: MIT
package procutil

import (
	"context"
	"fmt"

	"github.com/chigraph/chigraph/ir"
)

// CompileCModule runs cmod's declared source files through its
// configured compiler (falling back to LocateCompiler when cmod was
// declared with an empty compiler name) and records the resulting
// bitcode on cmod via SetBitcode, so modcompile's CModule-linking step
// (spec §4.6 step 5) has something to parse and link.
func CompileCModule(ctx context.Context, cmod *ir.CModule) error {
	sources := cmod.SourceFiles()
	if len(sources) == 0 {
		return fmt.Errorf("procutil: CModule %s declares no source files", cmod.Path())
	}
	bc, err := CompileCSource(ctx, sources, CompileCSourceOptions{Compiler: cmod.Compiler()})
	if err != nil {
		return fmt.Errorf("procutil: compiling CModule %s: %w", cmod.Path(), err)
	}
	cmod.SetBitcode(bc)
	return nil
}
