package common

import (
	"fmt"
	"strings"
)

// AppName is shown in the banner, the version command and log lines
const AppName = "ZillaSec"

// Stamped with -ldflags "-X github.com/codelie14/zillasec/internal/common.Version=..."
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the release version, "dev" for local builds
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with build date and a short commit hash
func GetFullVersion() string {
	commit := GitCommit
	if len(commit) > 7 && !strings.Contains(commit, "unknown") {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s %s (build %s, commit %s)", AppName, Version, Build, commit)
}
