package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the verse schedule.
const DateLayout = "2006-01-02"

// VerseSchedule assigns a verse to a calendar date, optionally for a single
// church. An empty ChurchID is the global schedule every church falls back to.
type VerseSchedule struct {
	Date           string `json:"date"`
	ChurchID       string `json:"church_id,omitempty"`
	VerseReference string `json:"verse_reference"`
	VerseText      string `json:"verse_text"`
	SourceURL      string `json:"bible_url,omitempty"`
}

// Validate checks the date format and that a verse reference is present.
func (v VerseSchedule) Validate() error {
	if _, err := time.Parse(DateLayout, v.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidSchedule, v.Date)
	}
	if strings.TrimSpace(v.VerseReference) == "" {
		return fmt.Errorf("%w: verse reference is required for %s", ErrInvalidSchedule, v.Date)
	}
	return ValidateChurchID(v.ChurchID)
}

// ScheduleSummary describes the contents of the verse schedule table.
type ScheduleSummary struct {
	Count     int    `json:"verses_in_database"`
	FirstDate string `json:"first_date,omitempty"`
	LastDate  string `json:"last_date,omitempty"`
}
