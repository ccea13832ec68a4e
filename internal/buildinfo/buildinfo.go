// Package buildinfo carries version stamps set with -ldflags, for example
//
//	go build -ldflags "-X spherecull/internal/buildinfo.Version=v0.3.0"
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the window title and logs.
// Without ldflags it falls back to the VCS revision recorded by the go tool.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return shortRev(Commit)
	}
	if rev := vcsRevision(); rev != "" {
		return shortRev(rev)
	}
	return "dev"
}

// String is the full banner: version, commit and date.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

func shortRev(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
