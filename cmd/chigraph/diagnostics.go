// SPDX-License-Identifier: MIT
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/chigraph/chigraph/result"
)

// errDiagnostics is returned by a subcommand's RunE after printResult has
// already reported the offending entries, so main's top-level error
// printer (which would otherwise repeat them) stays silent and just
// exits 1.
var errDiagnostics = errors.New("chigraph: aborting on reported diagnostics")

// printResult renders r's entries to w, one per line prefixed by its
// code, following spec §7's taxonomy. Returns false if r carries any
// SeverityError entry, the signal every subcommand uses to decide its
// process exit code (spec §6: "Exit code 0 on success, 1 on any
// E-severity Result").
func printResult(w io.Writer, r *result.Result) bool {
	for _, e := range r.Entries() {
		fmt.Fprintf(w, "%s: %s\n", e.Code, e.Overview)
		if e.Data != nil {
			fmt.Fprintf(w, "    %+v\n", e.Data)
		}
	}
	return r.Success()
}
