package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/shelfscan/internal/gemini"
	"github.com/lehigh-university-libraries/shelfscan/internal/ollama"
	"github.com/lehigh-university-libraries/shelfscan/internal/vision"
)

// newVisionClient constructs the classification client selected by
// SHELFSCAN_PROVIDER. The returned closer releases any underlying API
// connection and may be nil-safe called exactly once.
func newVisionClient(ctx context.Context) (vision.Client, func() error, error) {
	provider := os.Getenv("SHELFSCAN_PROVIDER")
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		client, err := gemini.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case "ollama":
		client := ollama.New()
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
