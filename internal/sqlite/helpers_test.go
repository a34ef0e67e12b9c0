package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// attachTestBackend attaches a backend in a fresh temp dir and detaches it
// when the test ends.
func attachTestBackend(t *testing.T) *Backend {
	t.Helper()

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func testKey(verse, churchID string) types.CacheKey {
	return types.CacheKey{
		VerseReference: verse,
		AgeRange:       types.AgeAdult,
		Gender:         types.GenderMale,
		LifeStage:      types.LifeStageGeneral,
		Language:       "en",
		ChurchID:       churchID,
	}
}

func testContent(reflection string) types.DevotionalContent {
	return types.DevotionalContent{
		VerseText:   "For God so loved the world...",
		Reflection:  reflection,
		Application: types.Application{"Call someone you love.", "Write down one gift."},
		Prayer:      "Lord, I thank you.",
		ImageURL:    "https://img.example/hero.png",
	}
}
