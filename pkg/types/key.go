package types

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Age ranges accepted in a CacheKey.
const (
	AgeTeen   = "13-17"
	AgeYoung  = "18-23"
	AgeAdult  = "24-64"
	AgeSenior = "65+"
)

// Genders accepted in a CacheKey.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Life stages accepted in a CacheKey.
const (
	LifeStageGeneral       = "general"
	LifeStageNewBeginnings = "new_beginnings"
	LifeStageStruggling    = "struggling"
	LifeStageTransitions   = "transitions"
)

// GlobalChurchMarker is the value storage backends persist in place of an
// absent church id. Concrete church ids may not start with its prefix.
const GlobalChurchMarker = "@global"

var validAgeRanges = map[string]bool{
	AgeTeen:   true,
	AgeYoung:  true,
	AgeAdult:  true,
	AgeSenior: true,
}

var validGenders = map[string]bool{
	GenderMale:   true,
	GenderFemale: true,
	GenderOther:  true,
}

var validLifeStages = map[string]bool{
	LifeStageGeneral:       true,
	LifeStageNewBeginnings: true,
	LifeStageStruggling:    true,
	LifeStageTransitions:   true,
}

// CacheKey identifies one personalization variant of a verse's devotional.
// An empty ChurchID is the global default variant; it is its own key and never
// matches a concrete church.
type CacheKey struct {
	VerseReference string `json:"verse_reference"`
	AgeRange       string `json:"age_range"`
	Gender         string `json:"gender"`
	LifeStage      string `json:"life_stage"`
	Language       string `json:"language"`
	ChurchID       string `json:"church_id,omitempty"`
}

// IsGlobal reports whether the key addresses the global default variant.
func (k CacheKey) IsGlobal() bool {
	return k.ChurchID == ""
}

// StorageChurchID returns the church id as persisted by storage backends,
// substituting GlobalChurchMarker for the global variant.
func (k CacheKey) StorageChurchID() string {
	return StorageChurchID(k.ChurchID)
}

// Validate returns ErrInvalidKey wrapped with the offending field when the key
// is not usable for a lookup or store.
func (k CacheKey) Validate() error {
	switch {
	case strings.TrimSpace(k.VerseReference) == "":
		return fmt.Errorf("%w: verse reference is required", ErrInvalidKey)
	case !validAgeRanges[k.AgeRange]:
		return fmt.Errorf("%w: age range %q", ErrInvalidKey, k.AgeRange)
	case !validGenders[k.Gender]:
		return fmt.Errorf("%w: gender %q", ErrInvalidKey, k.Gender)
	case !validLifeStages[k.LifeStage]:
		return fmt.Errorf("%w: life stage %q", ErrInvalidKey, k.LifeStage)
	case strings.TrimSpace(k.Language) == "":
		return fmt.Errorf("%w: language is required", ErrInvalidKey)
	}
	return ValidateChurchID(k.ChurchID)
}

// String renders the key in a stable form used for logging and hashing.
func (k CacheKey) String() string {
	return strings.Join([]string{
		k.VerseReference,
		k.AgeRange,
		k.Gender,
		k.LifeStage,
		k.Language,
		k.StorageChurchID(),
	}, "|")
}

// Fingerprint returns a 64-bit hash of String.
func (k CacheKey) Fingerprint() uint64 {
	return xxhash.Sum64String(k.String())
}

// StorageChurchID maps an optional church id to its persisted form.
func StorageChurchID(churchID string) string {
	if churchID == "" {
		return GlobalChurchMarker
	}
	return churchID
}

// ChurchIDFromStorage is the inverse of StorageChurchID.
func ChurchIDFromStorage(stored string) string {
	if stored == GlobalChurchMarker {
		return ""
	}
	return stored
}

// ValidateChurchID rejects church ids that would collide with the global marker.
func ValidateChurchID(churchID string) error {
	if strings.HasPrefix(churchID, "@") {
		return fmt.Errorf("%w: church id %q is reserved", ErrInvalidKey, churchID)
	}
	return nil
}

// ValidAgeRange reports whether s is one of the age range constants.
func ValidAgeRange(s string) bool { return validAgeRanges[s] }

// ValidGender reports whether s is one of the gender constants.
func ValidGender(s string) bool { return validGenders[s] }

// ValidLifeStage reports whether s is one of the life stage constants.
func ValidLifeStage(s string) bool { return validLifeStages[s] }
