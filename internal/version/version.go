// Package version holds build metadata injected at link time.
package version

import "fmt"

// Set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/driftscope/driftscope/internal/version.Version=v0.4.0 \
//	  -X github.com/driftscope/driftscope/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/driftscope/driftscope/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns just the version string, e.g. "v0.4.0".
func Short() string {
	return Version
}

// Info returns a one-line human-readable build description.
func Info() string {
	return fmt.Sprintf("driftscope %s (commit %s, built %s)", Version, Commit, Date)
}

// Map returns build metadata as fields for structured logging and the
// health endpoint.
func Map() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
	}
}
