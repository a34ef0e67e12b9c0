package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

func TestParseContent(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		application types.Application
		imagePrompt string
	}{
		{
			name:        "plain object with string application",
			text:        `{"reflection":"R","application":"A","prayer":"P","heroImagePrompt":"a sunrise"}`,
			application: types.Application{"A"},
			imagePrompt: "a sunrise",
		},
		{
			name:        "fenced object with array application",
			text:        "```json\n{\"reflection\":\"R\",\"application\":[\"one\",\" \",\"two\"],\"prayer\":\"P\"}\n```",
			application: types.Application{"one", "two"},
		},
		{
			name:        "prose around the object",
			text:        "Here is your devotional:\n{\"reflection\":\"R\",\"prayer\":\"P\"}\nBlessings!",
			application: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContent(tt.text)
			require.NoError(t, err)
			assert.Equal(t, "R", got.Content.Reflection)
			assert.Equal(t, "P", got.Content.Prayer)
			assert.Equal(t, tt.application, got.Content.Application)
			assert.Equal(t, tt.imagePrompt, got.ImagePrompt)
		})
	}
}

func TestParseContent_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no object", "I cannot help with that."},
		{"truncated", `{"reflection":"R","prayer":"P`},
		{"missing prayer", `{"reflection":"R","application":"A"}`},
		{"blank reflection", `{"reflection":"  ","prayer":"P"}`},
		{"braces reversed", "} nothing {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContent(tt.text)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestDefaultContent(t *testing.T) {
	c := DefaultContent("John 3:16", "For God so loved the world")
	assert.Equal(t, "For God so loved the world", c.VerseText)
	assert.Contains(t, c.Reflection, "John 3:16")
	assert.NotEmpty(t, c.Application)
	assert.NotEmpty(t, c.Prayer)
	assert.Empty(t, c.ImageURL)
}
