package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

func TestFallbackVerses(t *testing.T) {
	verses, err := FallbackVerses()
	require.NoError(t, err)
	require.NotEmpty(t, verses)

	seen := map[string]bool{}
	for _, v := range verses {
		assert.NoError(t, v.Validate())
		assert.Empty(t, v.ChurchID, "fallback schedule is global")
		assert.False(t, seen[v.Date], "duplicate date %s", v.Date)
		seen[v.Date] = true
	}
	assert.Equal(t, "Mark 8:35", verses[0].VerseReference)
}

func TestSeedFallbackVerses_Idempotent(t *testing.T) {
	b := attachTestBackend(t)
	ctx := context.Background()

	n1, err := b.SeedFallbackVerses(ctx)
	require.NoError(t, err)
	n2, err := b.SeedFallbackVerses(ctx)
	require.NoError(t, err)
	assert.Equal(t, n1, n2)

	summary, err := b.SummarizeVerses(ctx)
	require.NoError(t, err)
	assert.Equal(t, n1, summary.Count)
	assert.Equal(t, "2026-01-12", summary.FirstDate)
}

func TestExportArtifacts(t *testing.T) {
	b := attachTestBackend(t)
	ctx := context.Background()

	_, err := b.UpsertArtifact(ctx, testKey("John 3:16", ""), testContent("a"), "m", time.Now())
	require.NoError(t, err)
	_, err = b.UpsertArtifact(ctx, testKey("John 3:16", "acme"), testContent("b"), "m", time.Now())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "artifacts.jsonl")
	n, err := b.ExportArtifacts(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"church_id":"acme"`)
	assert.Contains(t, string(data), `"reflection":"a"`)
}

func TestReadVerseFile_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verses.jsonl")
	content := `{"date":"2026-04-01","verse_reference":"Psalm 1:1","verse_text":"Blessed"}
not json

{"date":"2026-04-02","church_id":"acme","verse_reference":"Psalm 1:2"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	verses, skipped, err := ReadVerseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []types.VerseSchedule{
		{Date: "2026-04-01", VerseReference: "Psalm 1:1", VerseText: "Blessed"},
		{Date: "2026-04-02", ChurchID: "acme", VerseReference: "Psalm 1:2"},
	}, verses)
}
