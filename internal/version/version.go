// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags at build time, e.g.
// go build -ldflags "-X .../internal/version.Version=v1.2.0".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single-line human-readable version string.
func Info() string {
	return fmt.Sprintf("dategenie %s (commit %s, built %s)", Version, Commit, Date)
}
