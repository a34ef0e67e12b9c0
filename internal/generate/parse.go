package generate

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Parsed is the structured content extracted from generator text.
type Parsed struct {
	Content     types.DevotionalContent
	ImagePrompt string
}

// ParseContent extracts a devotional from generator text. Markdown code fences
// and any prose around the outermost JSON object are ignored. Reflection and
// prayer are required; application may be a string or an array of strings.
func ParseContent(text string) (Parsed, error) {
	s := strings.ReplaceAll(text, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return Parsed{}, fmt.Errorf("%w: no JSON object", ErrMalformedOutput)
	}
	raw := s[start : end+1]
	if !gjson.Valid(raw) {
		return Parsed{}, fmt.Errorf("%w: invalid JSON", ErrMalformedOutput)
	}

	doc := gjson.Parse(raw)
	reflection := strings.TrimSpace(doc.Get("reflection").String())
	prayer := strings.TrimSpace(doc.Get("prayer").String())
	if reflection == "" || prayer == "" {
		return Parsed{}, fmt.Errorf("%w: reflection and prayer are required", ErrMalformedOutput)
	}

	var application types.Application
	app := doc.Get("application")
	switch {
	case app.IsArray():
		app.ForEach(func(_, item gjson.Result) bool {
			if v := strings.TrimSpace(item.String()); v != "" {
				application = append(application, v)
			}
			return true
		})
	case app.Type == gjson.String:
		if v := strings.TrimSpace(app.String()); v != "" {
			application = types.Application{v}
		}
	}

	return Parsed{
		Content: types.DevotionalContent{
			Reflection:  reflection,
			Application: application,
			Prayer:      prayer,
		},
		ImagePrompt: strings.TrimSpace(doc.Get("heroImagePrompt").String()),
	}, nil
}

// DefaultContent is the minimal devotional served when generator output could
// not be parsed.
func DefaultContent(verseReference, verseText string) types.DevotionalContent {
	reflection := fmt.Sprintf("Take a quiet moment with %s today. Read it slowly, "+
		"and notice which word or phrase stays with you.", verseReference)
	return types.DevotionalContent{
		VerseText:   verseText,
		Reflection:  reflection,
		Application: types.Application{"Read the verse again this evening and write down one thing it asks of you."},
		Prayer:      "Lord, open my heart to your word today. Amen.",
	}
}
