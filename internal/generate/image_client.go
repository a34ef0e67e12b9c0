package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ImageConfig configures an ImageClient.
type ImageConfig struct {
	URL        string
	Width      int
	Height     int
	HTTPClient *http.Client
}

// ImageClient posts image prompts to an HTTP image endpoint.
type ImageClient struct {
	cfg ImageConfig
}

// NewImageClient returns an ImageClient. Zero dimensions take the defaults.
func NewImageClient(cfg ImageConfig) *ImageClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultImageWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultImageHeight
	}
	return &ImageClient{cfg: cfg}
}

type imageRequest struct {
	Prompt   string `json:"prompt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	AgeRange string `json:"ageRange,omitempty"`
}

// GenerateImage requests an image for prompt and returns its URL.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string, ageRange string) (string, error) {
	endpoint := strings.TrimSpace(c.cfg.URL)
	if endpoint == "" {
		return "", fmt.Errorf("image url is required")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("image prompt is required")
	}

	body, err := json.Marshal(imageRequest{
		Prompt:   prompt + ". Warm lighting, inspirational, photorealistic, no text or words.",
		Width:    c.cfg.Width,
		Height:   c.cfg.Height,
		AgeRange: ageRange,
	})
	if err != nil {
		return "", fmt.Errorf("marshal image request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("image request status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if payload.ImageURL == "" {
		return "", fmt.Errorf("image response missing imageUrl")
	}
	return payload.ImageURL, nil
}

var _ ImageGenerator = (*ImageClient)(nil)
