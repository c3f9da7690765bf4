// SPDX-License-Identifier: MIT
package procutil

import (
	"os"
	"os/exec"
	"path/filepath"
)

// compilerCandidates is the search order for a usable C/C++ front-end
// binary, matching cmd/internal/setup/setup.go's pattern of trying a
// short, ordered candidate list via exec.LookPath rather than hard-
// coding one name.
var compilerCandidates = []string{"clang", "cc", "gcc"}

// libcHeaderCandidates is the search order for a development libc
// installation, checked by presence of its canonical top-level header
// rather than by probing a binary.
var libcHeaderCandidates = []string{
	"/usr/include/stdlib.h",
	"/usr/include/x86_64-linux-gnu/stdlib.h",
	"/usr/local/include/stdlib.h",
}

// LocateCompiler finds the first available C/C++ compiler on PATH
// (spec C13's "libc-locator" helpers, generalized to "external
// toolchain locator" since the C-module path needs both a compiler
// binary and the libc it links against).
func LocateCompiler() (string, error) {
	for _, name := range compilerCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrNoCompiler
}

// LocateLibc reports whether a development libc (headers a C front-end
// needs to resolve standard includes) is present on the host, returning
// the directory its canonical header was found under.
func LocateLibc() (dir string, err error) {
	for _, header := range libcHeaderCandidates {
		if info, statErr := os.Stat(header); statErr == nil && !info.IsDir() {
			return filepath.Dir(header), nil
		}
	}
	return "", ErrNoLibc
}
