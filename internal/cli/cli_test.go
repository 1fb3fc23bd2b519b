package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/levelgen/pkg/level"
)

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	var out bytes.Buffer
	c.SetOutput(&out)

	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

var smallLevelArgs = []string{"--rooms", "4", "--seed", "3", "--width", "40", "--height", "40"}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"generate", "render", "preview", "serve", "config", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGenerateASCIIToStdout(t *testing.T) {
	args := append([]string{"generate", "--no-cache"}, smallLevelArgs...)

	first, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(first, string(level.GlyphRoom)) {
		t.Errorf("ascii output has no room glyphs:\n%s", first)
	}

	second, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("generate again: %v", err)
	}
	if first != second {
		t.Error("same seed produced different maps")
	}
}

func TestGenerateWritesFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "crypt")
	args := append([]string{"generate", "-f", "json,ascii,dot", "-o", base}, smallLevelArgs...)

	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, ext := range []string{"json", "ascii", "dot"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}

	f, err := os.Open(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	l, err := level.Read(f)
	if err != nil {
		t.Fatalf("read generated level: %v", err)
	}
	if len(l.Rooms) != 4 || l.Seed != 3 {
		t.Errorf("level has %d rooms and seed %d, want 4 and 3", len(l.Rooms), l.Seed)
	}
}

func TestGenerateInvalidFormat(t *testing.T) {
	if _, err := runCLI(t, "generate", "-f", "png"); err == nil {
		t.Error("generate with unsupported format should fail")
	}
}

func TestGenerateUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "small.toml")
	if err := os.WriteFile(cfg, []byte("rooms = 2\nseed = 9\n[bounds]\nwidth = 30\nheight = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "generate", "--no-cache", "-c", cfg, "-f", "json")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	l, err := level.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if len(l.Rooms) != 2 || l.Seed != 9 {
		t.Errorf("level has %d rooms and seed %d, want config values 2 and 9", len(l.Rooms), l.Seed)
	}

	// Flags win over the file.
	out, err = runCLI(t, "generate", "--no-cache", "-c", cfg, "-f", "json", "--rooms", "3")
	if err != nil {
		t.Fatalf("generate with override: %v", err)
	}
	l, err = level.Unmarshal([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Rooms) != 3 {
		t.Errorf("rooms = %d, want flag value 3", len(l.Rooms))
	}
}

func TestRenderSavedLevel(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "level.json")
	args := append([]string{"generate", "-f", "json", "-o", input, "--no-cache"}, smallLevelArgs...)
	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := runCLI(t, "render", input, "-f", "geojson,dot", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, name := range []string{"level.geojson", "level.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if _, err := runCLI(t, "render", input, "-f", "json", "--no-cache"); err == nil {
		t.Error("render over its own input should fail")
	}
	if _, err := runCLI(t, "render", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("render of a missing file should fail")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levelgen.toml")

	if _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCLI(t, "config", "init", path); err == nil {
		t.Error("config init over an existing file should fail without --force")
	}
	if _, err := runCLI(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, err := runCLI(t, "config", "show", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"rooms = 12", "[[templates]]", "side_hall_frequency = 0.15"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q, want suffix %q", out, appName)
	}

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the command name")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}
