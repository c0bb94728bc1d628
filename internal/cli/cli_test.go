package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const testSceneTOML = `
name = "cli"

[frame]
width = 160
height = 160

[[targets]]
id = "save"
x = 40
y = 80
width = 64
height = 32

[[callouts]]
id = "tip"
target = "save"
text = "hi"
side = "top"
mode = "polling"
`

// runCommand executes the root command with args and an isolated config
// directory, returning what the command wrote to its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeScene writes the test scene into a temporary directory.
func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(testSceneTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "cache", "path")
	if err == nil {
		t.Fatal("expected an error for a missing --config file")
	}
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := writeOutput(path, []byte("data")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("file = %q, want %q", got, "data")
	}
}
