package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyforge/internal/artifact"
	"storyforge/internal/completeness"
	"storyforge/internal/store"
	"storyforge/internal/testsupport"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
data_dir = %q
intake_dir = %q
media_dir = %q
log_dir = %q

[gemini]
api_key = "test-key"
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "intake"),
		filepath.Join(base, "media"),
		filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestStatusEmptyLibrary(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out := runCommand(t, "--config", cfgPath, "status")
	if !strings.Contains(out, "Library is empty") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestStatusListsStories(t *testing.T) {
	cfgPath := writeTestConfig(t)

	ctx := newCommandContext(&cfgPath)
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	a := testsupport.NewArtifact(t, st, "Harbor Lights")
	st.Close()

	out := runCommand(t, "--config", cfgPath, "status")
	if !strings.Contains(out, "Harbor Lights") {
		t.Fatalf("story missing from status output: %s", out)
	}
	if !strings.Contains(out, shortID(a.ID)) {
		t.Fatalf("short id missing from status output: %s", out)
	}
	if !strings.Contains(out, "1 stories, 0 playable") {
		t.Fatalf("summary line missing: %s", out)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	cfgPath := writeTestConfig(t)

	ctx := newCommandContext(&cfgPath)
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	a := testsupport.NewArtifact(t, st, "Harbor Lights")
	st.Close()

	out := runCommand(t, "--config", cfgPath, "validate", a.ID)
	if !strings.Contains(out, "needs processing") {
		t.Fatalf("expected needs-processing verdict: %s", out)
	}
	if !strings.Contains(out, "Audio: Missing") {
		t.Fatalf("expected audio status line: %s", out)
	}
}

func TestResolveArtifactPrefix(t *testing.T) {
	cfgPath := writeTestConfig(t)

	ctx := newCommandContext(&cfgPath)
	cfg, err := ctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	a := testsupport.NewArtifact(t, st, "Harbor Lights")

	got, err := resolveArtifact(context.Background(), st, a.ID[:8])
	if err != nil {
		t.Fatalf("resolveArtifact: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("resolved %s, want %s", got.ID, a.ID)
	}
	if _, err := resolveArtifact(context.Background(), st, "zzzz"); err == nil {
		t.Fatal("expected error for unknown prefix")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out := runCommand(t, "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("output should name the target: %s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[gemini]") {
		t.Fatal("sample config missing gemini section")
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"config", "init", "--path", target})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
}

func TestRenderHelpers(t *testing.T) {
	if got := audioStatusLabel(artifact.AudioFileAbsent); got != "File Absent" {
		t.Fatalf("audioStatusLabel = %q", got)
	}
	if got := formatDuration(605); got != "10:05" {
		t.Fatalf("formatDuration = %q", got)
	}
	if got := formatDuration(0); got != "-" {
		t.Fatalf("formatDuration zero = %q", got)
	}
	if got := shortID("0123456789"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	report := completeness.StageReport{Valid: true, ValidCount: 10}
	if got := stageCell(report); got != "ok (10)" {
		t.Fatalf("stageCell = %q", got)
	}
	report = completeness.StageReport{Problems: []completeness.Problem{{SceneNumber: 2}}}
	if got := stageCell(report); got != "1 problems" {
		t.Fatalf("stageCell = %q", got)
	}
}
