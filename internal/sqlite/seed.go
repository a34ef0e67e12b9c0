package sqlite

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// fallbackVersesJSONL is the built-in global verse schedule used when no
// external schedule source is available.
//
//go:embed fallback_verses.jsonl
var fallbackVersesJSONL string

// FallbackVerses returns the built-in global verse schedule.
func FallbackVerses() ([]types.VerseSchedule, error) {
	verses, skipped, err := readJSONL[types.VerseSchedule](bufio.NewScanner(strings.NewReader(fallbackVersesJSONL)))
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		return nil, fmt.Errorf("fallback verses: %d malformed lines", skipped)
	}
	return verses, nil
}

// SeedFallbackVerses upserts the built-in schedule into the verses table.
// Seeding is idempotent because rows are keyed by (date, church id).
func (b *Backend) SeedFallbackVerses(ctx context.Context) (int, error) {
	verses, err := FallbackVerses()
	if err != nil {
		return 0, err
	}
	return b.UpsertVerses(ctx, verses)
}
