// SPDX-License-Identifier: MIT
package procutil

import "errors"

var (
	// ErrNoCompiler is returned when no usable C/C++ compiler binary can
	// be located on PATH.
	ErrNoCompiler = errors.New("procutil: no C compiler found on PATH")
	// ErrNoLibc is returned when LocateLibc cannot find a development
	// libc on the host.
	ErrNoLibc = errors.New("procutil: no libc development files found")
	// ErrSubprocessFailed wraps a non-zero subprocess exit. Run returns
	// the captured stderr as a separate value, not in the error text.
	ErrSubprocessFailed = errors.New("procutil: subprocess failed")
)
