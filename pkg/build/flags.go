// SPDX-License-Identifier: MIT
//
// Package build carries the metadata stamped into the binary at link
// time. Name, timestamp, commit, version and a per-build uuid arrive
// through -ldflags -X; Initialize validates them once at startup so the
// rest of the program can read them without checking. A binary built
// without the flags refuses to start, which keeps untagged builds out
// of installations.
package build

import "fmt"

// appDescription is compiled in rather than injected; it describes the
// program, not the build.
const appDescription = "Audio-reactive character animation engine"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
	Uuid        string
}

// Populated by the linker, for example:
//
//	go build -ldflags "\
//	  -X kinetic/pkg/build.buildName=kinetic \
//	  -X kinetic/pkg/build.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ) \
//	  -X kinetic/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X kinetic/pkg/build.buildVersion=0.1.0 \
//	  -X kinetic/pkg/build.buildUuid=$(uuidgen)"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildUuid    string

	buildFlags = &ldFlags{
		Name:        "unknown",
		Description: appDescription,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "unknown",
		Uuid:        "unknown",
	}
)

// Initialize validates the linker-injected variables and copies them
// into the flags struct. Call once, early in main, before anything
// reads GetBuildFlags.
func Initialize() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"BuildName", buildName},
		{"BuildTime", buildTime},
		{"BuildCommit", buildCommit},
		{"BuildVersion", buildVersion},
		{"BuildUuid", buildUuid},
	} {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion
	buildFlags.Uuid = buildUuid

	return nil
}

// GetBuildFlags returns the build information. Values are the "unknown"
// placeholders until Initialize succeeds.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
