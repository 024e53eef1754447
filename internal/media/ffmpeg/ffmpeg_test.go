package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestConcatFilterResamplesEveryInput(t *testing.T) {
	filter := concatFilter(3, Options{SampleRate: 44100, Channels: 2})
	for i := 0; i < 3; i++ {
		chain := fmt.Sprintf("[%d:a]aresample=44100,aformat=channel_layouts=stereo[a%d];", i, i)
		if !strings.Contains(filter, chain) {
			t.Errorf("filter missing chain for input %d: %s", i, filter)
		}
	}
	if !strings.HasSuffix(filter, "[a0][a1][a2]concat=n=3:v=0:a=1[joined]") {
		t.Fatalf("unexpected join tail: %s", filter)
	}
}

func TestConcatFilterDefaultsToSynthesisFormat(t *testing.T) {
	filter := concatFilter(2, Options{})
	if !strings.Contains(filter, "aresample=24000,aformat=channel_layouts=mono") {
		t.Fatalf("expected 24 kHz mono default, got %s", filter)
	}
}

// stubBinary writes a shell script that records its arguments, standing in
// for the real binary so invocations can be inspected.
func stubBinary(t *testing.T, dir, name, argsFile string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestConcatNormalizesMixedFormatInputs(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	binary := stubBinary(t, dir, "ffmpeg", argsFile)

	speech := filepath.Join(dir, "scene-00.wav")
	silence := filepath.Join(dir, "scene-01.wav")
	output := filepath.Join(dir, "out.mp3")
	opts := Options{Codec: "libmp3lame", Bitrate: "128k", SampleRate: 44100, Channels: 2}

	if err := Concat(context.Background(), binary, []string{speech, silence}, output, opts); err != nil {
		t.Fatalf("Concat: %v", err)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	joined := strings.Join(args, " ")

	filter := ""
	for i, arg := range args {
		if arg == "-filter_complex" && i+1 < len(args) {
			filter = args[i+1]
		}
	}
	if filter == "" {
		t.Fatalf("no filter graph in invocation: %s", joined)
	}
	for i := 0; i < 2; i++ {
		chain := fmt.Sprintf("[%d:a]aresample=44100,aformat=channel_layouts=stereo[a%d]", i, i)
		if !strings.Contains(filter, chain) {
			t.Errorf("input %d fed to concat without normalization: %s", i, filter)
		}
	}
	if !strings.Contains(joined, "-map [joined]") {
		t.Errorf("output not mapped from the join label: %s", joined)
	}
	if !strings.Contains(joined, "concat=n=2:v=0:a=1") {
		t.Errorf("missing concat join: %s", joined)
	}
}

func TestConcatRejectsSingleInput(t *testing.T) {
	err := Concat(context.Background(), "ffmpeg", []string{"only.wav"}, "out.mp3", Options{})
	if err == nil {
		t.Fatal("expected error for single input")
	}
}

func TestSilenceUsesTargetFormat(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	binary := stubBinary(t, dir, "ffmpeg", argsFile)

	output := filepath.Join(dir, "silence.wav")
	if err := Silence(context.Background(), binary, 30, output, Options{SampleRate: 44100, Channels: 2}); err != nil {
		t.Fatalf("Silence: %v", err)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	joined := strings.Join(strings.Split(strings.TrimSpace(string(raw)), "\n"), " ")
	if !strings.Contains(joined, "anullsrc=r=44100:cl=stereo") {
		t.Fatalf("silence not rendered at the target format: %s", joined)
	}
}
