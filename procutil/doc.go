// SPDX-License-Identifier: MIT

// Package procutil implements the portable subprocess, tempfile, and
// libc-locator helpers spec C13 names: the C/C++ front-end collaborator
// (compiling a CModule's source files to bitcode, spec §4.6 step 5) needs
// to invoke an external compiler and clean up its scratch files, without
// the core depending on a shell directly.
//
// Grounded on liuprestin-relurpify/framework/command_runner.go's
// CommandRunner (a context-aware exec.CommandContext wrapper capturing
// stdout/stderr into buffers, with a timeout applied via
// context.WithTimeout) and app/relurpish/runtime/probe.go's
// exec.LookPath probing for an available container runtime binary,
// adapted here to probing for an available C compiler and the host
// libc's development files.
package procutil
