package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Application holds the practical-application section of a devotional.
// Callers supply either a single paragraph or a list of steps; a single item
// marshals as a JSON string and several items as a JSON array.
type Application []string

// Text joins the items with blank lines.
func (a Application) Text() string {
	return strings.Join(a, "\n\n")
}

// MarshalJSON implements json.Marshaler.
func (a Application) MarshalJSON() ([]byte, error) {
	switch len(a) {
	case 0:
		return []byte(`""`), nil
	case 1:
		return json.Marshal(a[0])
	default:
		return json.Marshal([]string(a))
	}
}

// UnmarshalJSON accepts a JSON string, an array of strings, or null.
func (a *Application) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("application list: %w", err)
		}
		*a = items
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("application text: %w", err)
	}
	if s == "" {
		*a = nil
		return nil
	}
	*a = Application{s}
	return nil
}

// DevotionalContent is the generated bundle served for one CacheKey.
type DevotionalContent struct {
	VerseText   string      `json:"verse_text"`
	Reflection  string      `json:"reflection"`
	Application Application `json:"application"`
	Prayer      string      `json:"prayer"`
	ImageURL    string      `json:"image_url,omitempty"`
	AudioURL    string      `json:"audio_url,omitempty"`
}
