package artifact

import (
	"strings"
	"time"
)

const (
	// SceneCount is the fixed number of scenes requested per artifact.
	SceneCount = 10
	// MinSceneContent is the minimum byte length for scene content to count
	// as non-empty.
	MinSceneContent = 10
	// AudioSizeFloor is the minimum assembled narration size in bytes.
	// Smaller files indicate truncated synthesis and are treated as
	// incomplete even without a recorded error.
	AudioSizeFloor = 50 * 1024
)

// Character is one submitted character, optionally with a downloaded
// reference photo used for image generation.
type Character struct {
	Name     string        `json:"name"`
	PhotoURL string        `json:"photo_url,omitempty"`
	Photo    *ImagePayload `json:"photo,omitempty"`
}

// ImagePayload carries downloaded or generated binary image data. Data is
// base64-encoded in JSON by encoding/json.
type ImagePayload struct {
	Data     []byte `json:"data,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Error    string `json:"error,omitempty"`
}

// EntityCategory classifies an extracted entity.
type EntityCategory string

const (
	CategoryCharacter EntityCategory = "CHARACTER"
	CategoryLocation  EntityCategory = "LOCATION"
	CategoryObject    EntityCategory = "OBJECT"
	CategoryAction    EntityCategory = "ACTION"
	CategoryEmotion   EntityCategory = "EMOTION"
	CategoryConcept   EntityCategory = "CONCEPT"
)

// Categories returns the known entity categories in declaration order.
func Categories() []EntityCategory {
	return []EntityCategory{
		CategoryCharacter,
		CategoryLocation,
		CategoryObject,
		CategoryAction,
		CategoryEmotion,
		CategoryConcept,
	}
}

// Entity is one extracted entity with its position in the scene content.
type Entity struct {
	Text        string         `json:"text"`
	Category    EntityCategory `json:"category"`
	StartOffset int            `json:"start_offset"`
	EndOffset   int            `json:"end_offset"`
	Description string         `json:"description,omitempty"`
}

// EntityResult is the per-scene entity extraction output. SourceLength is
// always recomputed from the owning scene content, never trusted from the
// collaborator.
type EntityResult struct {
	Entities     []Entity `json:"entities"`
	TotalCount   int      `json:"total_count"`
	SourceLength int      `json:"source_length"`
	Error        string   `json:"error,omitempty"`
}

// Valid reports whether the result is usable: no recorded error and at
// least one entity.
func (r *EntityResult) Valid() bool {
	return r != nil && r.Error == "" && len(r.Entities) > 0
}

// ImageResult is one generated scene illustration variant, or the error
// that prevented it.
type ImageResult struct {
	Variant     int       `json:"variant"`
	Prompt      string    `json:"prompt,omitempty"`
	Data        []byte    `json:"data,omitempty"`
	MIMEType    string    `json:"mime_type,omitempty"`
	Fallback    bool      `json:"fallback,omitempty"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
}

// Scene is one ordered unit of the story. SceneNumber runs 1..SceneCount
// and is significant for playback order.
type Scene struct {
	SceneNumber int           `json:"scene_number"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Entities    *EntityResult `json:"entities,omitempty"`
	Images      []ImageResult `json:"images,omitempty"`
}

// ContentEmpty reports whether the scene content is absent or below the
// minimum length threshold.
func (s Scene) ContentEmpty() bool {
	return len(strings.TrimSpace(s.Content)) < MinSceneContent
}

// HasValidImage reports whether at least one image variant carries a
// usable payload.
func (s Scene) HasValidImage() bool {
	for _, img := range s.Images {
		if img.Error == "" && len(img.Data) > 0 {
			return true
		}
	}
	return false
}

// Audio is the whole-artifact narration record. The encoded track lives on
// disk at Path; the record carries its measurements. A populated Error
// means the last assembly attempt failed.
type Audio struct {
	Path            string    `json:"path,omitempty"`
	MIMEType        string    `json:"mime_type,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	SegmentCount    int       `json:"segment_count,omitempty"`
	SizeBytes       int64     `json:"size_bytes,omitempty"`
	Placeholder     bool      `json:"placeholder,omitempty"`
	Error           string    `json:"error,omitempty"`
	GeneratedAt     time.Time `json:"generated_at,omitzero"`
}

// Fragment is one scene's raw speech output before assembly. It is
// transient and never persisted.
type Fragment struct {
	SceneIndex      int
	Data            []byte
	MIMEType        string
	DurationSeconds float64
	Placeholder     bool
}

// StageTimes records when each generation stage last produced output.
type StageTimes struct {
	Scenes   time.Time `json:"scenes,omitzero"`
	Entities time.Time `json:"entities,omitzero"`
	Images   time.Time `json:"images,omitzero"`
	Audio    time.Time `json:"audio,omitzero"`
}

// Artifact is the unit of work: one submitted story request plus whatever
// generated content previous pipeline passes have produced.
type Artifact struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Outline         string      `json:"outline"`
	Characters      []Character `json:"characters"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Scenes          []Scene     `json:"scenes,omitempty"`
	Summary         string      `json:"summary,omitempty"`
	WordCount       int         `json:"word_count,omitempty"`
	Audio           *Audio      `json:"audio,omitempty"`
	StageTimes      StageTimes  `json:"stage_times,omitzero"`
	ForceRegenerate bool        `json:"force_regenerate,omitempty"`
}

// CharacterNames returns the submitted character names in order.
func (a *Artifact) CharacterNames() []string {
	names := make([]string, 0, len(a.Characters))
	for _, c := range a.Characters {
		if name := strings.TrimSpace(c.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// RecountWords recomputes WordCount across all scene contents.
func (a *Artifact) RecountWords() {
	total := 0
	for _, scene := range a.Scenes {
		total += len(strings.Fields(scene.Content))
	}
	a.WordCount = total
}

