// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the client build version.
package version

import "runtime/debug"

// Version is the release version, overridden at link time with
// -ldflags "-X ...version.Version=v1.2.3".
var Version = "dev"

// Full returns the version plus the VCS revision when the binary was
// built from a checkout with module metadata.
func Full() string {
	full := Version
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
				full += " (" + setting.Value[:12] + ")"
				break
			}
		}
	}
	return full
}
