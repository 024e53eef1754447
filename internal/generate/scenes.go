package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"storyforge/internal/artifact"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

var sceneSetSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scenes": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"number":  {Type: genai.TypeInteger},
					"title":   {Type: genai.TypeString},
					"content": {Type: genai.TypeString},
				},
				Required: []string{"number", "title", "content"},
			},
		},
		"summary": {Type: genai.TypeString},
	},
	Required: []string{"scenes", "summary"},
}

// GenerateScenes asks the text model for the full fixed-size scene set.
// The scene count is never negotiated with the model; short or oversized
// responses are rejected here.
func (c *Client) GenerateScenes(ctx context.Context, characterNames []string, outline string) (*SceneSet, error) {
	ctx, cancel := c.textContext(ctx)
	defer cancel()

	prompt := scenesPrompt(characterNames, outline)
	resp, err := c.api.Models.GenerateContent(
		ctx,
		c.cfg.TextModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   sceneSetSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: generate scenes: %w", services.ErrCollaborator, err)
	}

	payload := struct {
		Scenes  []GeneratedScene `json:"scenes"`
		Summary string           `json:"summary"`
	}{}
	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("generate scenes: empty model response")
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("generate scenes: decode response: %w", err)
	}
	if len(payload.Scenes) != artifact.SceneCount {
		return nil, fmt.Errorf("generate scenes: model returned %d scenes, want %d", len(payload.Scenes), artifact.SceneCount)
	}

	c.logger.Debug("scene set generated",
		logging.Int("scenes", len(payload.Scenes)),
		logging.Int("summary_chars", len(payload.Summary)))

	return &SceneSet{Scenes: payload.Scenes, Summary: strings.TrimSpace(payload.Summary)}, nil
}

// responseText flattens the first candidate's text parts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
