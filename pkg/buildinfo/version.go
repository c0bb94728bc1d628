// Package buildinfo reports the version of the running binary.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/callout/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/callout/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/callout/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with `go install` fall back to the module version and
// VCS settings embedded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build information.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build information, filling unset ldflags values from
// the embedded module metadata.
func Get() Info {
	resolveOnce.Do(func() {
		resolved = Info{Version: Version, Commit: Commit, Date: Date}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		resolved = fromBuildInfo(resolved, bi)
	})
	return resolved
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// String returns the formatted build information.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the version template string for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
