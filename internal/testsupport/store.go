package testsupport

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"storyforge/internal/artifact"
	"storyforge/internal/config"
	"storyforge/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewArtifact inserts a bare artifact for tests using the provided store.
func NewArtifact(t testing.TB, st *store.Store, title string) *artifact.Artifact {
	t.Helper()

	a := &artifact.Artifact{
		Title:   title,
		Outline: "A short outline for " + title,
		Characters: []artifact.Character{
			{Name: "Mira"},
			{Name: "Tobin"},
		},
	}
	if err := st.Create(context.Background(), a); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return a
}

// CompleteAudio returns an audio record for a track already on disk.
func CompleteAudio(t testing.TB, path string) *artifact.Audio {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return &artifact.Audio{
		Path:            path,
		MIMEType:        "audio/mpeg",
		DurationSeconds: 600,
		SegmentCount:    artifact.SceneCount,
		SizeBytes:       info.Size(),
		GeneratedAt:     time.Now().UTC(),
	}
}

// CompleteScenes returns a full scene set where every scene carries enough
// content, a populated entity result, and one successful image variant.
func CompleteScenes() []artifact.Scene {
	scenes := make([]artifact.Scene, 0, artifact.SceneCount)
	for i := 1; i <= artifact.SceneCount; i++ {
		content := fmt.Sprintf("Scene %d follows Mira and Tobin deeper into the glasswood forest.", i)
		scenes = append(scenes, artifact.Scene{
			SceneNumber: i,
			Title:       fmt.Sprintf("Chapter %d", i),
			Content:     content,
			Entities: &artifact.EntityResult{
				Entities: []artifact.Entity{
					{Text: "Mira", Category: artifact.CategoryCharacter, StartOffset: 0, EndOffset: 4},
				},
				TotalCount:   1,
				SourceLength: len(content),
			},
			Images: []artifact.ImageResult{
				{Variant: 1, Prompt: "Mira in the glasswood forest", Data: []byte{0x89, 0x50, 0x4e, 0x47}, MIMEType: "image/png"},
			},
		})
	}
	return scenes
}
