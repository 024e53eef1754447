package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// Synthesize narrates one scene's text with the speech model. The model
// streams audio as inline-data chunks, typically raw L16 samples with the
// format encoded in the MIME parameters; chunks are returned in arrival
// order with no dedup or normalization applied.
func (c *Client) Synthesize(ctx context.Context, sceneText string) ([]SpeechChunk, error) {
	ctx, cancel := c.speechContext(ctx)
	defer cancel()

	stream := c.api.Models.GenerateContentStream(
		ctx,
		c.cfg.SpeechModel,
		[]*genai.Content{genai.NewContentFromText(sceneText, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
				},
			},
		},
	)

	var chunks []SpeechChunk
	for resp, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("%w: synthesize speech: %w", services.ErrCollaborator, err)
		}
		chunks = append(chunks, inlineAudio(resp)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("synthesize speech: stream carried no audio data")
	}

	c.logger.Debug("speech synthesized",
		logging.Int("chunks", len(chunks)),
		logging.String("mime_type", chunks[0].MIMEType))

	return chunks, nil
}

func inlineAudio(resp *genai.GenerateContentResponse) []SpeechChunk {
	if resp == nil {
		return nil
	}
	var chunks []SpeechChunk
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			chunks = append(chunks, SpeechChunk{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType})
		}
	}
	return chunks
}
