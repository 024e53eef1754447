package generate

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// fallbackPNG is a 1x1 transparent image used when generation is disabled
// or every attempt for a variant fails.
const fallbackPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// FallbackImage returns the built-in placeholder payload.
func FallbackImage() ([]byte, string) {
	data, _ := base64.StdEncoding.DecodeString(fallbackPNGBase64)
	return data, "image/png"
}

// GenerateImage renders one illustration for the prompt. Reference images,
// when provided, are attached as inline PNG parts so the model can keep
// character appearances consistent across scenes.
func (c *Client) GenerateImage(ctx context.Context, prompt string, references [][]byte) (*GeneratedImage, error) {
	ctx, cancel := c.textContext(ctx)
	defer cancel()

	parts := []*genai.Part{{Text: prompt}}
	for _, ref := range references {
		if len(ref) == 0 {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(ref, "image/png"))
	}

	resp, err := c.api.Models.GenerateContent(
		ctx,
		c.cfg.ImageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: generate image: %w", services.ErrCollaborator, err)
	}

	img := firstInlineImage(resp)
	if img == nil {
		return nil, fmt.Errorf("generate image: response carried no image data")
	}

	c.logger.Debug("image generated",
		logging.String("mime_type", img.MIMEType),
		logging.Int("bytes", len(img.Data)))

	return img, nil
}

func firstInlineImage(resp *genai.GenerateContentResponse) *GeneratedImage {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return &GeneratedImage{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}
		}
	}
	return nil
}
