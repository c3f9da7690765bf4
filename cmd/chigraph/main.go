// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if err != errDiagnostics {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
