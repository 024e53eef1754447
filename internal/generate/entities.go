package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"storyforge/internal/logging"
	"storyforge/internal/services"
)

var entitiesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"entities": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":         {Type: genai.TypeString},
					"category":     {Type: genai.TypeString},
					"start_offset": {Type: genai.TypeInteger},
					"end_offset":   {Type: genai.TypeInteger},
					"description":  {Type: genai.TypeString},
				},
				Required: []string{"text", "category", "start_offset", "end_offset"},
			},
		},
		"total_count": {Type: genai.TypeInteger},
	},
	Required: []string{"entities"},
}

// ExtractEntities asks the text model for entity mentions in one scene.
// Counts and offsets in the response are claims, not facts; the pipeline
// recomputes everything derivable from the scene text.
func (c *Client) ExtractEntities(ctx context.Context, sceneText, sceneTitle string, knownNames []string) (*ExtractedEntities, error) {
	ctx, cancel := c.textContext(ctx)
	defer cancel()

	prompt := entitiesPrompt(sceneText, sceneTitle, knownNames)
	resp, err := c.api.Models.GenerateContent(
		ctx,
		c.cfg.TextModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   entitiesSchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: extract entities: %w", services.ErrCollaborator, err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("extract entities: empty model response")
	}
	var extracted ExtractedEntities
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return nil, fmt.Errorf("extract entities: decode response: %w", err)
	}

	c.logger.Debug("entities extracted",
		logging.String("scene_title", sceneTitle),
		logging.Int("entities", len(extracted.Entities)))

	return &extracted, nil
}
