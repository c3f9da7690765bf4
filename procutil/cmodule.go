// SPDX-License-Identifier: MIT
package procutil

import (
	"context"
	"fmt"
	"time"
)

// CompileCSourceOptions configures CompileCSource.
type CompileCSourceOptions struct {
	// Compiler overrides the binary LocateCompiler would otherwise find.
	Compiler string
	Timeout  time.Duration
}

// CompileCSource invokes an external C/C++ front-end (spec §1's "C/C++
// front-end that produces IR from source for a C module", treated as an
// external collaborator) to compile sourceFiles to an LLVM-equivalent
// bitcode blob, returning the bytes ir.CModule.SetBitcode expects.
//
// This is the one piece of the CModule path procutil actually owns: the
// subprocess invocation and scratch-file handling. Parsing C source into
// the backend's IR is entirely the external compiler's job; procutil
// only shells out to it and collects its output file.
func CompileCSource(ctx context.Context, sourceFiles []string, opts CompileCSourceOptions) ([]byte, error) {
	if len(sourceFiles) == 0 {
		return nil, fmt.Errorf("procutil: CompileCSource requires at least one source file")
	}

	compiler := opts.Compiler
	if compiler == "" {
		found, err := LocateCompiler()
		if err != nil {
			return nil, err
		}
		compiler = found
	}

	out, err := NewScratchFile("", "chigraph-cmodule-*.bc")
	if err != nil {
		return nil, err
	}
	defer out.Close()

	args := append([]string{compiler, "-c", "-emit-llvm", "-o", out.Path}, sourceFiles...)
	if _, stderr, err := Run(ctx, Request{Args: args, Timeout: opts.Timeout}); err != nil {
		return nil, fmt.Errorf("procutil: compiling %v: %w (stderr: %s)", sourceFiles, err, stderr)
	}

	return out.ReadAndClose()
}
