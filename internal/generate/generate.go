// Package generate talks to the external text and image generators and turns
// their untrusted output into devotional content.
package generate

import (
	"context"
	"errors"
)

// Default generation settings.
const (
	DefaultBaseURL   = "https://openrouter.ai/api/v1"
	DefaultModel     = "google/gemini-2.0-flash-001"
	DefaultMaxTokens = 2500

	DefaultImageWidth  = 1024
	DefaultImageHeight = 768
)

// ErrMalformedOutput means the generator answered but its text did not hold
// the structured sections a devotional needs.
var ErrMalformedOutput = errors.New("malformed generator output")

// Prompt is one request to a text generator.
type Prompt struct {
	System string
	User   string
}

// Output is the raw text a generator returned and the model that produced it.
type Output struct {
	Text  string
	Model string
}

// Generator produces text for a prompt. Errors returned by Generate are
// transport or provider failures; the text itself is not validated.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (Output, error)
}

// ImageGenerator renders a hero image and returns its URL.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, ageRange string) (string, error)
}
