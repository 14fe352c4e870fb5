// Package version provides build-time version information for reelhouse.
//
// Version, Commit, and Date are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/reelhouse/reelhouse/internal/version.Version=x.y.z \
//	                   -X github.com/reelhouse/reelhouse/internal/version.Commit=$(git rev-parse HEAD) \
//	                   -X github.com/reelhouse/reelhouse/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via ldflags.
var (
	// Version is the semantic version following SemVer 2.0.0.
	Version = "dev"

	// Commit is the full git commit SHA.
	Commit = "unknown"

	// Date is the build timestamp in RFC3339 format.
	Date = "unknown"
)

// GoVersion is the Go runtime version.
var GoVersion = runtime.Version()

// ApplicationName is the canonical name of this application.
const ApplicationName = "reelhouse"

// Info contains structured version information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns all version information as a structured type.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", ApplicationName, Version, shortCommit(), Date, GoVersion)
}

// Short returns just the version number for --version output.
func Short() string {
	return Version
}

func shortCommit() string {
	const shortLen = 7
	if len(Commit) > shortLen {
		return Commit[:shortLen]
	}
	return Commit
}
