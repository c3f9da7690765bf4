// SPDX-License-Identifier: MIT
package workspace

import "errors"

var (
	// ErrNotAWorkspace is returned by Find/Load when no marker directory
	// is found walking up from the search root (result.CodeNotWorkspace,
	// E02).
	ErrNotAWorkspace = errors.New("workspace: not a workspace")
	// ErrAlreadyAWorkspace is returned by Init when root already contains
	// a marker directory.
	ErrAlreadyAWorkspace = errors.New("workspace: already a workspace")
)
