package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/treewalk/pkg/config"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// blackTree has only black nodes so that highlight fills stand out.
func blackTree() tree.NodeList {
	return tree.NodeList{
		tree.Root("50", "black"),
		tree.Child("30", "black", "50"),
		tree.Child("70", "black", "50"),
	}
}

func writeTreeFile(t *testing.T, nodes tree.NodeList) string {
	t.Helper()
	var buf bytes.Buffer
	if err := tree.WriteNodes(&buf, nodes); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeConfig writes a config file that animates fast and caches under a
// temporary directory.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "[animation]\ninterval = \"1ms\"\n\n[cache]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "cache")) + "\"\n"
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvNATSURL, "")
	t.Setenv(config.EnvRedisURL, "")
	return path
}

// execute runs the root command with args and returns what it wrote to its
// output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
