package devotional

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Request is one get-or-generate call. Only AgeRange and LifeStage are
// expected from every caller; the rest have defaults or are resolved.
type Request struct {
	VerseReference string  `json:"verse_reference,omitempty"`
	VerseText      string  `json:"verse_text,omitempty"`
	AgeRange       string  `json:"age_range"`
	Gender         string  `json:"gender,omitempty"`
	LifeStage      string  `json:"life_stage"`
	Language       string  `json:"language,omitempty"`
	ChurchID       string  `json:"church_id,omitempty"`
	Style          string  `json:"content_style,omitempty"`
	Session        Session `json:"session"`
}

var ageSynonyms = map[string]string{
	"teen":        types.AgeTeen,
	"teens":       types.AgeTeen,
	"university":  types.AgeYoung,
	"young adult": types.AgeYoung,
	"young_adult": types.AgeYoung,
	"adult":       types.AgeAdult,
	"senior":      types.AgeSenior,
	"seniors":     types.AgeSenior,
}

// Normalize maps request fields onto a valid CacheKey. The verse reference
// must already be present.
func Normalize(req Request) (types.CacheKey, error) {
	key, err := normalizeFields(req)
	if err != nil {
		return types.CacheKey{}, err
	}
	if err := key.Validate(); err != nil {
		return types.CacheKey{}, err
	}
	return key, nil
}

// normalizeFields normalizes everything except the verse, which the service
// may still have to resolve.
func normalizeFields(req Request) (types.CacheKey, error) {
	age, err := normalizeAgeRange(req.AgeRange)
	if err != nil {
		return types.CacheKey{}, err
	}
	lang, err := normalizeLanguage(req.Language)
	if err != nil {
		return types.CacheKey{}, err
	}
	churchID := strings.TrimSpace(req.ChurchID)
	if err := types.ValidateChurchID(churchID); err != nil {
		return types.CacheKey{}, err
	}

	gender := strings.ToLower(strings.TrimSpace(req.Gender))
	if gender == "" {
		gender = types.GenderMale
	}

	return types.CacheKey{
		VerseReference: strings.TrimSpace(req.VerseReference),
		AgeRange:       age,
		Gender:         gender,
		LifeStage:      normalizeLifeStage(req.LifeStage),
		Language:       lang,
		ChurchID:       churchID,
	}, nil
}

func normalizeAgeRange(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.AgeAdult, nil
	}
	if types.ValidAgeRange(s) {
		return s, nil
	}
	if age, ok := ageSynonyms[s]; ok {
		return age, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		switch {
		case n <= 17:
			return types.AgeTeen, nil
		case n <= 23:
			return types.AgeYoung, nil
		case n <= 64:
			return types.AgeAdult, nil
		default:
			return types.AgeSenior, nil
		}
	}
	return "", fmt.Errorf("%w: age range %q", types.ErrInvalidKey, s)
}

// normalizeLifeStage turns display names such as "New Beginnings" into
// stored values such as "new_beginnings".
func normalizeLifeStage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.LifeStageGeneral
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

func normalizeLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "en", nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: language %q", types.ErrInvalidKey, s)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
