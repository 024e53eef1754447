package generate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"storyforge/internal/artifact"
)

func scenesPrompt(characterNames []string, outline string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a children's story in exactly %d scenes.\n", artifact.SceneCount)
	if len(characterNames) > 0 {
		fmt.Fprintf(&b, "The main characters are: %s.\n", strings.Join(characterNames, ", "))
	}
	if outline = strings.TrimSpace(outline); outline != "" {
		fmt.Fprintf(&b, "Follow this outline:\n%s\n", outline)
	}
	b.WriteString("Each scene needs a short title and at least two paragraphs of narrative prose. ")
	b.WriteString("Number the scenes 1 through ")
	fmt.Fprintf(&b, "%d and finish with a one-paragraph summary of the whole story.", artifact.SceneCount)
	return b.String()
}

func entitiesPrompt(sceneText, sceneTitle string, knownNames []string) string {
	var b strings.Builder
	b.WriteString("Extract every notable entity mention from the scene below. ")
	fmt.Fprintf(&b, "Allowed categories: %s. ", categoryList())
	b.WriteString("Report character offsets into the scene text exactly as given.\n")
	if len(knownNames) > 0 {
		fmt.Fprintf(&b, "Known character names: %s.\n", strings.Join(knownNames, ", "))
	}
	if sceneTitle != "" {
		fmt.Fprintf(&b, "Scene title: %s\n", sceneTitle)
	}
	b.WriteString("Scene text:\n")
	b.WriteString(sceneText)
	return b.String()
}

// ImagePrompt builds the request text for one of a scene's two visual
// variants: 1 is a wide establishing shot, 2 a character-focused shot.
func ImagePrompt(scene artifact.Scene, variant int, characterNames []string) string {
	subject := "a wide establishing shot of the scene's setting"
	if variant == 2 {
		subject = "a close character-focused shot of the scene's protagonist"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Children's storybook illustration, %s.\n", subject)
	if scene.Title != "" {
		fmt.Fprintf(&b, "Scene: %s.\n", scene.Title)
	}
	if len(characterNames) > 0 {
		fmt.Fprintf(&b, "Characters: %s.\n", strings.Join(characterNames, ", "))
	}
	fmt.Fprintf(&b, "Depict this moment:\n%s", truncateExcerpt(scene.Content, 600))
	return b.String()
}

// truncateExcerpt caps the excerpt at limit bytes without splitting a
// multi-byte rune.
func truncateExcerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func categoryList() string {
	categories := artifact.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
