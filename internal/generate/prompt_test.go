package generate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"storyforge/internal/artifact"
)

func TestScenesPromptMentionsFixedCount(t *testing.T) {
	prompt := scenesPrompt([]string{"Mira", "Tobin"}, "A forest adventure")
	if !strings.Contains(prompt, "exactly 10 scenes") {
		t.Fatalf("prompt does not pin the scene count: %q", prompt)
	}
	if !strings.Contains(prompt, "Mira, Tobin") {
		t.Fatalf("prompt missing character names: %q", prompt)
	}
	if !strings.Contains(prompt, "A forest adventure") {
		t.Fatalf("prompt missing outline: %q", prompt)
	}
}

func TestImagePromptVariants(t *testing.T) {
	scene := artifact.Scene{SceneNumber: 1, Title: "The Gate", Content: "Mira stood before the gate."}

	wide := ImagePrompt(scene, 1, []string{"Mira"})
	if !strings.Contains(wide, "establishing shot") {
		t.Fatalf("variant 1 should be an establishing shot: %q", wide)
	}
	focused := ImagePrompt(scene, 2, []string{"Mira"})
	if !strings.Contains(focused, "character-focused") {
		t.Fatalf("variant 2 should be character-focused: %q", focused)
	}
	if wide == focused {
		t.Fatal("variants should produce distinct prompts")
	}
}

func TestImagePromptTruncatesLongContent(t *testing.T) {
	scene := artifact.Scene{SceneNumber: 1, Content: strings.Repeat("a", 2000)}
	prompt := ImagePrompt(scene, 1, nil)
	if len(prompt) > 800 {
		t.Fatalf("prompt not truncated: %d chars", len(prompt))
	}
}

func TestTruncateExcerptKeepsRunesWhole(t *testing.T) {
	// One ascii byte then three-byte runes, so byte 600 lands mid-rune.
	long := "x" + strings.Repeat("森", 300)
	got := truncateExcerpt(long, 600)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got[len(got)-4:])
	}
	if len(got) != 598 {
		t.Fatalf("expected cut back to the last rune boundary at 598, got %d bytes", len(got))
	}
	if truncateExcerpt("short", 600) != "short" {
		t.Fatal("content under the limit must pass through unchanged")
	}
	if got := truncateExcerpt("abcdef", 4); got != "abcd" {
		t.Fatalf("ascii cut = %q, want abcd", got)
	}
}

func TestFallbackImageDecodes(t *testing.T) {
	data, mime := FallbackImage()
	if len(data) == 0 {
		t.Fatal("fallback image is empty")
	}
	if mime != "image/png" {
		t.Fatalf("unexpected mime type %q", mime)
	}
	if string(data[1:4]) != "PNG" {
		t.Fatalf("fallback is not a PNG: % x", data[:8])
	}
}
