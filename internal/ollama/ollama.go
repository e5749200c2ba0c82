package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/vision"
)

const defaultModel = "qwen2.5vl:7b"

// Client implements vision.Client against a local Ollama instance
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New returns a new Ollama client configured from the environment
func New() *Client {
	baseURL := os.Getenv("OLLAMA_URL")
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := os.Getenv("SHELFSCAN_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &Client{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
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

func (c *Client) generate(ctx context.Context, prompt string, image []byte, temperature float64) (string, error) {
	requestBody := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": temperature,
		},
	}
	if image != nil {
		requestBody["images"] = []string{base64.StdEncoding.EncodeToString(image)}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode Ollama response: %w", err)
	}

	return response.Response, nil
}
