// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/L1TangDingZhen/BOX-P/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/L1TangDingZhen/BOX-P/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/L1TangDingZhen/BOX-P/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with "go install" fall back to the module version recorded
// by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Name is the program name used in version output and the Server header.
const Name = "boxp"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Resolved returns Version, or the main module version when Version was
// not set at link time.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Resolved(), Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Resolved(), Commit, Date)
}

// UserAgent returns "boxp/<version>".
func UserAgent() string {
	return Name + "/" + Resolved()
}
