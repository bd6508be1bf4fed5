// Package version reports the build provenance of the dotgraph binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Overridable at build time via ldflags; when left empty the module's
// embedded VCS stamp is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

// String returns a human-readable version line. There is no semver release
// train; builds are identified by commit and build time.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					if commit == "" {
						commit = s.Value
					}
				case "vcs.time":
					if built == "" {
						built = s.Value
					}
				}
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("dotgraph dev (commit: %s, built: %s)", shortCommit(commit), built)
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
