// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for canvas
// binaries. The release pipeline overrides the variables below via
// -ldflags; development builds report "devel".
package version

import (
	"fmt"
	"os"
	"runtime"
)

var (
	// Version is the semantic version of the build, e.g. "1.4.0".
	Version = "devel"

	// Commit is the short git commit hash of the build.
	Commit = ""
)

// Info returns a single-line version description.
func Info() string {
	info := Version
	if Commit != "" {
		info += " (" + Commit + ")"
	}
	return info + " " + runtime.Version()
}

// Print writes the standard --version output for the named binary to
// stdout.
func Print(name string) {
	fmt.Fprintf(os.Stdout, "%s %s\n", name, Info())
}
