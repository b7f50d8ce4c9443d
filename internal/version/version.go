/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version carries build metadata.
package version

// Version is the current version of smartalarm.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/smartalarm/internal/version.Version=X.Y.Z
var Version = "0.3.0"

// Commit is the source revision, also set via ldflags.
var Commit = "unknown"

// String renders the version for logs and the CLI.
func String() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
