package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"storyforge/internal/config"
	"storyforge/internal/logging"
	"storyforge/internal/services"
)

// SceneSet is the text collaborator's whole-story output.
type SceneSet struct {
	Scenes  []GeneratedScene
	Summary string
}

// GeneratedScene is one scene as returned by the text collaborator.
type GeneratedScene struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractedEntities is the entity collaborator's per-scene output. Offsets
// are as claimed by the collaborator; callers recompute derived fields.
type ExtractedEntities struct {
	Entities   []ExtractedEntity `json:"entities"`
	TotalCount int               `json:"total_count"`
}

// ExtractedEntity mirrors one entity mention in scene text.
type ExtractedEntity struct {
	Text        string `json:"text"`
	Category    string `json:"category"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Description string `json:"description"`
}

// GeneratedImage is one successful image payload.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// SpeechChunk is one streamed slice of synthesized audio.
type SpeechChunk struct {
	Data     []byte
	MIMEType string
}

// SceneWriter produces a full scene set from the submission inputs.
type SceneWriter interface {
	GenerateScenes(ctx context.Context, characterNames []string, outline string) (*SceneSet, error)
}

// EntityExtractor pulls entity mentions out of one scene's text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, sceneText, sceneTitle string, knownNames []string) (*ExtractedEntities, error)
}

// Illustrator renders one image for a prompt.
type Illustrator interface {
	GenerateImage(ctx context.Context, prompt string, references [][]byte) (*GeneratedImage, error)
}

// SpeechSynthesizer narrates one scene's text as a stream of audio chunks.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, sceneText string) ([]SpeechChunk, error)
}

// Client implements all four collaborator interfaces against the Gemini API.
type Client struct {
	api    *genai.Client
	cfg    config.Gemini
	logger *slog.Logger
}

// NewClient constructs a Gemini-backed client from configuration.
func NewClient(ctx context.Context, cfg config.Gemini, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is not configured", services.ErrConfiguration)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{api: api, cfg: cfg, logger: logger}, nil
}

func (c *Client) textContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return timeoutContext(ctx, c.cfg.TextTimeoutSeconds)
}

func (c *Client) speechContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return timeoutContext(ctx, c.cfg.SpeechTimeout)
}

func timeoutContext(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}
