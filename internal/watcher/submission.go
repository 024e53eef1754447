package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storyforge/internal/artifact"
)

// maxPhotoBytes bounds a downloaded character reference photo.
const maxPhotoBytes = 8 << 20

// Submission is the intake JSON format for a new story request.
type Submission struct {
	Title      string                `json:"title"`
	Outline    string                `json:"outline"`
	Characters []SubmissionCharacter `json:"characters"`
}

// SubmissionCharacter names one character, optionally with a photo URL to
// download as an image-generation reference.
type SubmissionCharacter struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ParseSubmission decodes and validates intake JSON.
func ParseSubmission(data []byte) (*Submission, error) {
	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	sub.Title = strings.TrimSpace(sub.Title)
	if sub.Title == "" {
		return nil, errors.New("submission has no title")
	}
	valid := sub.Characters[:0]
	for _, c := range sub.Characters {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		valid = append(valid, c)
	}
	sub.Characters = valid
	return &sub, nil
}

// ToArtifact builds the initial artifact from a submission. Photo
// downloads are best-effort: a failed fetch records the error on the
// character and never blocks the import.
func (s *Submission) ToArtifact(ctx context.Context, client *http.Client) *artifact.Artifact {
	a := &artifact.Artifact{
		Title:   s.Title,
		Outline: strings.TrimSpace(s.Outline),
	}
	for _, c := range s.Characters {
		character := artifact.Character{Name: c.Name, PhotoURL: c.PhotoURL}
		if c.PhotoURL != "" && client != nil {
			character.Photo = fetchPhoto(ctx, client, c.PhotoURL)
		}
		a.Characters = append(a.Characters, character)
	}
	return a
}

func fetchPhoto(ctx context.Context, client *http.Client, url string) *artifact.ImagePayload {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &artifact.ImagePayload{Error: fmt.Sprintf("build photo request: %v", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &artifact.ImagePayload{Error: fmt.Sprintf("fetch photo: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &artifact.ImagePayload{Error: fmt.Sprintf("fetch photo: status %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return &artifact.ImagePayload{Error: fmt.Sprintf("read photo: %v", err)}
	}
	if len(data) > maxPhotoBytes {
		return &artifact.ImagePayload{Error: fmt.Sprintf("photo exceeds %d bytes", maxPhotoBytes)}
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &artifact.ImagePayload{Data: data, MIMEType: mimeType}
}
