package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/lexscope/internal/config"
)

func runInit(args []string, stdout, stderr *bytes.Buffer) error {
	return run(context.Background(), append([]string{"init"}, args...), stdout, stderr)
}

// TestApplySectionCreate verifies that applySection on empty content yields
// just the section with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	if got != section+"\n" {
		t.Errorf("got %q", got)
	}
}

// TestApplySectionAppend verifies that existing content without a sentinel block
// is preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "# team settings\nproject: demo"
	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n") {
		t.Errorf("existing content should be preserved at start:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\n"+section+"\n") {
		t.Errorf("section should be appended after a blank line:\n%s", got)
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding content intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "# header\n\n"
	after := "\n\n# trailing notes\n"
	old := before + sentinelStart + "\nold content\n" + sentinelEnd + after

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(old, section)

	if !strings.HasPrefix(got, before) {
		t.Errorf("content before sentinel should be preserved:\n%s", got)
	}
	if !strings.HasSuffix(got, after) {
		t.Errorf("content after sentinel should be preserved:\n%s", got)
	}
	if strings.Contains(got, "old content") {
		t.Error("old content should be replaced")
	}
	if !strings.Contains(got, "new content") {
		t.Error("new content missing")
	}
}

// TestStripSettings verifies that only top-level settings keys and their
// bodies are removed.
func TestStripSettings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"comments kept", "# notes\n\n# more\n", "# notes\n\n# more\n"},
		{"nested block removed", "# team\nlog:\n  level: warn\n", "# team\n"},
		{"flow style removed", "log: {level: warn}\nproject: demo\n", "project: demo\n"},
		{"unrelated keys kept", "project: demo\ncustom:\n  log: keep\n", "project: demo\ncustom:\n  log: keep\n"},
		{"list body removed", "scan:\n  exclude:\n  - vendor/**\nnext: 1\n", "next: 1\n"},
		{"sentinels kept", sentinelStart + "\noutput:\n  format: json\n" + sentinelEnd + "\n",
			sentinelStart + "\n" + sentinelEnd + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := stripSettings(tt.in); got != tt.want {
				t.Errorf("stripSettings(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSettingsKeysMatchConfig verifies that settingsKeys lists every
// top-level key config.Marshal writes.
func TestSettingsKeysMatchConfig(t *testing.T) {
	t.Parallel()
	data, err := config.Marshal(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		t.Fatal(err)
	}
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	want := slices.Clone(settingsKeys)
	slices.Sort(keys)
	slices.Sort(want)
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("config keys = %v, settingsKeys = %v", keys, want)
	}
}

// TestInitMovesExistingSettings verifies that settings written outside the
// managed block are moved into it, so the file still loads.
func TestInitMovesExistingSettings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte("# team settings\nlog:\n  level: warn\nproject: demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	for range 2 {
		if err := runInit([]string{path}, &buf, &buf); err != nil {
			t.Fatalf("init: %v", err)
		}
		cfg, err := config.ReadFile(path)
		if err != nil {
			t.Fatalf("reading config after init: %v", err)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("log.level = %q, want warn", cfg.Log.Level)
		}
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if n := strings.Count(content, "\nlog:"); n != 1 {
		t.Errorf("log key appears %d times:\n%s", n, content)
	}
	for _, keep := range []string{"# team settings\n", "project: demo\n"} {
		if !strings.Contains(content, keep) {
			t.Errorf("missing %q:\n%s", keep, content)
		}
	}
}

// TestInitCreatesLoadableFile verifies that init writes a config file that
// loads back to the defaults.
func TestInitCreatesLoadableFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, sentinelStart+"\n") {
		t.Error("sentinel start missing from created file")
	}
	if !strings.HasSuffix(content, sentinelEnd+"\n") {
		t.Error("sentinel end missing from created file")
	}
	if !strings.Contains(stderr.String(), "wrote lexscope settings to") {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Errorf("written config = %+v, want defaults", cfg)
	}
}

// TestInitPreservesValues verifies that re-running init keeps values edited
// inside the block.
func TestInitPreservesValues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	var buf bytes.Buffer
	if err := runInit([]string{path}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	data, _ := os.ReadFile(path)
	edited := strings.Replace(string(data), "format: json", "format: toon", 1)
	if edited == string(data) {
		t.Fatal("expected format: json in generated block")
	}
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runInit([]string{path}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	cfg, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("output.format = %q, want toon", cfg.Output.Format)
	}
}

// TestInitDryRun verifies that --dry-run prints the full would-be file content
// to stdout and does not create or modify the target file.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := os.Stat(path); err == nil {
		t.Error("--dry-run should not create the file")
	}
	out := stdout.String()
	if !strings.Contains(out, sentinelStart) {
		t.Error("dry-run output missing sentinel start")
	}
	if !strings.Contains(out, sentinelEnd) {
		t.Error("dry-run output missing sentinel end")
	}
}

// TestInitDryRunNoPath verifies that --dry-run without a path prints just the
// generated section to stdout.
func TestInitDryRunNoPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, sentinelStart) {
		t.Error("output should start with the sentinel")
	}
	for _, key := range []string{"max_file_size: 1000000", "capacity: 1024", "level: info"} {
		if !strings.Contains(out, key) {
			t.Errorf("output missing %q:\n%s", key, out)
		}
	}
}

// TestInitDryRunShowsFullFile verifies that --dry-run on an existing file
// shows the complete would-be file content, including surrounding text.
func TestInitDryRunShowsFullFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	existing := "# project settings\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, existing) {
		t.Error("dry-run output missing existing file content")
	}
	if !strings.Contains(out, sentinelStart) {
		t.Error("dry-run output missing sentinel start")
	}
	// File on disk should be unchanged.
	data, _ := os.ReadFile(path)
	if string(data) != existing {
		t.Error("--dry-run must not modify the file")
	}
}

// TestInitIdempotent verifies that running init twice produces identical output.
func TestInitIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	var buf bytes.Buffer
	if err := runInit([]string{path}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := runInit([]string{path}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("init is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

// TestInitRejectsInvalidFile verifies that init refuses to rewrite a file
// it cannot parse.
func TestInitRejectsInvalidFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for invalid config")
	}
}
