package version

import "fmt"

// These variables are injected at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("prebuild %s (%s, %s)", Version, Commit, BuildDate)
}

// UserAgent identifies this tool to the services it calls.
func UserAgent() string {
	return "prebuild/" + Version
}
