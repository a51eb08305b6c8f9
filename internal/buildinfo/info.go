// Package buildinfo carries the version stamp injected at link time.
package buildinfo

import "fmt"

// These are overridden via -ldflags at release build time; the zero
// values identify a local development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the stamp the way the CLI reports it.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
