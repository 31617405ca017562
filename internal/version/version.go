// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package version holds build information stamped in with -ldflags.
package version

var (
	Version = "dev"
	Commit  = "none"
)

// Full returns the version with the commit appended, e.g. "1.0.0+abc123".
func Full() string {
	return Version + "+" + Commit
}

// UserAgent is sent with every request to the service.
func UserAgent() string {
	return "vhsec/" + Version
}
