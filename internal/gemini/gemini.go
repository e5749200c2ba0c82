package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/vision"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Client implements vision.Client against Google Gemini. A single Client is
// safe for concurrent use and should be shared across requests.
type Client struct {
	genai *genai.Client
	model string
}

// New returns a new Gemini client configured from the environment
func New(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	model := os.Getenv("SHELFSCAN_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &Client{genai: client, model: model}, nil
}

// Close releases the underlying API connection
func (c *Client) Close() error {
	return c.genai.Close()
}

// Overview runs the low-detail counting pass
func (c *Client) Overview(ctx context.Context, image []byte) (*models.Overview, error) {
	raw, err := c.generate(ctx, vision.OverviewPrompt(), image, 0.2)
	if err != nil {
		return nil, fmt.Errorf("overview pass failed: %w", err)
	}
	return vision.ParseOverview(raw)
}

// IdentifyRegion runs the high-detail identification pass over one region
func (c *Client) IdentifyRegion(ctx context.Context, image []byte, label string, overview *models.Overview) ([]models.RawDetection, error) {
	raw, err := c.generate(ctx, vision.IdentifyPrompt(label, overview), image, 0.1)
	if err != nil {
		return nil, fmt.Errorf("identification failed for region %s: %w", label, err)
	}
	return vision.ParseDetections(raw, label)
}

// Correct runs the text-only correction pass over the deduplicated list
func (c *Client) Correct(ctx context.Context, books []models.IdentifiedBook) ([]models.IdentifiedBook, error) {
	raw, err := c.generate(ctx, vision.CorrectPrompt(books), nil, 0.1)
	if err != nil {
		return nil, fmt.Errorf("correction pass failed: %w", err)
	}
	return vision.ParseCorrections(raw)
}

func (c *Client) generate(ctx context.Context, prompt string, image []byte, temperature float32) (string, error) {
	model := c.genai.GenerativeModel(c.model)
	model.SetTemperature(temperature)

	parts := []genai.Part{genai.Text(prompt)}
	if image != nil {
		parts = append(parts, genai.ImageData("jpeg", image))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
