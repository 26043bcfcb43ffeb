package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/matzehuels/treewalk/pkg/errors"
)

func TestSearchCommand(t *testing.T) {
	cfg := writeConfig(t)
	file := writeTreeFile(t, blackTree())
	dir := t.TempDir()
	out := filepath.Join(dir, "final.svg")
	frames := filepath.Join(dir, "frames")

	if _, err := execute(t, "search", "30", "--config", cfg, "--file", file, "-q", "-o", out, "--frames", frames); err != nil {
		t.Fatalf("search: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	checks := map[string]string{
		"node-50": "black", // visited
		"node-30": "red",   // active
		"node-70": "black", // untouched
	}
	for id, fill := range checks {
		re := regexp.MustCompile(`id="` + id + `"[^>]*fill="` + fill + `"`)
		if !re.MatchString(svg) {
			t.Errorf("%s fill is not %s", id, fill)
		}
	}

	// initial frame plus one per paint: 50 active, 50 visited, 30 active
	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("frames = %d, want 4", len(entries))
	}
}

func TestSearchInvalidValue(t *testing.T) {
	cfg := writeConfig(t)
	file := writeTreeFile(t, blackTree())

	for _, v := range []string{"abc", " "} {
		_, err := execute(t, "search", v, "--config", cfg, "--file", file, "-q")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("search %q err = %v, want INVALID_INPUT", v, err)
		}
	}
}

func TestSearchRestorePalette(t *testing.T) {
	cfg := writeConfig(t)
	file := writeTreeFile(t, blackTree())
	out := filepath.Join(t.TempDir(), "final.svg")

	if _, err := execute(t, "search", "70", "--config", cfg, "--file", file, "-q", "-o", out, "--palette", "restore"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`id="node-70"[^>]*fill="lightblue"`).Match(data) {
		t.Error("last node is not lightblue")
	}
	if !regexp.MustCompile(`id="node-50"[^>]*fill="black"`).Match(data) {
		t.Error("visited node was not restored to its own color")
	}
}

func TestSearchUnknownPalette(t *testing.T) {
	cfg := writeConfig(t)
	file := writeTreeFile(t, blackTree())
	_, err := execute(t, "search", "30", "--config", cfg, "--file", file, "--palette", "neon")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
