package version

import (
	"fmt"
	"runtime"
)

// Set at build time via ldflags.
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// FactFormat is the version of the fact shapes this build emits.
// Stores and consumers compare majors to decide compatibility.
const FactFormat = "1.1.0"

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	FactFormat string `json:"fact_format"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		Version:    Version,
		FactFormat: FactFormat,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Dev reports whether this is an untagged build.
func (i Info) Dev() bool { return i.Version == "dev" }

// String returns a human-readable version string
func (i Info) String() string {
	commit := i.CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("logifact %s (facts v%s, commit %s, built %s)", i.Version, i.FactFormat, commit, i.BuildTime)
}
