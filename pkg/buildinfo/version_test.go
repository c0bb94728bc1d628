package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := fromBuildInfo(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	want := Info{Version: "v0.3.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}
	if got != want {
		t.Errorf("fromBuildInfo() = %+v, want %+v", got, want)
	}

	ldflags := Info{Version: "v1.0.0", Commit: "fff", Date: "today"}
	if got := fromBuildInfo(ldflags, bi); got != ldflags {
		t.Errorf("ldflags values were overwritten: %+v", got)
	}
}

func TestFromBuildInfoDevel(t *testing.T) {
	bi := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := fromBuildInfo(Info{Version: "dev"}, bi); got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
}
