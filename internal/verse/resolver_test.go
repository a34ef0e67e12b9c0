package verse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devotional/internal/sqlite"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func attachStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func seed(t *testing.T, store types.VerseStore, verses ...types.VerseSchedule) {
	t.Helper()
	_, err := store.UpsertVerses(context.Background(), verses)
	require.NoError(t, err)
}

func TestResolveToday_ChurchRowWins(t *testing.T) {
	store := attachStore(t)
	seed(t, store,
		types.VerseSchedule{Date: "2026-03-01", VerseReference: "Psalm 23:1"},
		types.VerseSchedule{Date: "2026-03-01", ChurchID: "grace", VerseReference: "Micah 6:8"},
	)
	r := NewResolver(store, WithClock(fixedClock("2026-03-01T12:00:00Z")), WithLogger(discard))

	v, err := r.ResolveToday(context.Background(), "grace")
	require.NoError(t, err)
	assert.Equal(t, "Micah 6:8", v.VerseReference)
	assert.Equal(t, "grace", v.ChurchID)

	v, err = r.ResolveToday(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23:1", v.VerseReference)
}

func TestResolveToday_FallsBackToGlobal(t *testing.T) {
	store := attachStore(t)
	seed(t, store, types.VerseSchedule{Date: "2026-03-01", VerseReference: "Psalm 23:1"})
	r := NewResolver(store, WithClock(fixedClock("2026-03-01T12:00:00Z")), WithLogger(discard))

	v, err := r.ResolveToday(context.Background(), "unknown-church")
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23:1", v.VerseReference)
	assert.Empty(t, v.ChurchID)
}

func TestResolveToday_NothingScheduled(t *testing.T) {
	store := attachStore(t)
	seed(t, store, types.VerseSchedule{Date: "2026-03-02", VerseReference: "Psalm 23:1"})
	r := NewResolver(store, WithClock(fixedClock("2026-03-01T12:00:00Z")), WithLogger(discard))

	_, err := r.ResolveToday(context.Background(), "grace")
	assert.ErrorIs(t, err, types.ErrNoVerseScheduled)
}

func TestResolveToday_UsesConfiguredTimeZone(t *testing.T) {
	store := attachStore(t)
	seed(t, store,
		types.VerseSchedule{Date: "2026-03-01", VerseReference: "Psalm 23:1"},
		types.VerseSchedule{Date: "2026-03-02", VerseReference: "John 1:1"},
	)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on the 1st is already the 2nd in Tokyo.
	clock := fixedClock("2026-03-01T20:00:00Z")

	utc := NewResolver(store, WithClock(clock), WithLogger(discard))
	v, err := utc.ResolveToday(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23:1", v.VerseReference)

	tz := NewResolver(store, WithClock(clock), WithLocation(tokyo), WithLogger(discard))
	assert.Equal(t, "2026-03-02", tz.Today())
	v, err = tz.ResolveToday(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "John 1:1", v.VerseReference)
}

func TestResolveToday_DateIsRecomputedPerCall(t *testing.T) {
	store := attachStore(t)
	now := fixedClock("2026-03-01T08:00:00Z")()
	r := NewResolver(store, WithClock(func() time.Time { return now }), WithLogger(discard))

	assert.Equal(t, "2026-03-01", r.Today())
	now = now.Add(24 * time.Hour)
	assert.Equal(t, "2026-03-02", r.Today())
}

// flakyVerses fails church lookups with a store error.
type flakyVerses struct {
	types.VerseStore
	globalErr error
}

func (f *flakyVerses) FindVerse(ctx context.Context, date, churchID string) (*types.VerseSchedule, error) {
	if churchID != "" {
		return nil, errors.New("disk I/O error")
	}
	if f.globalErr != nil {
		return nil, f.globalErr
	}
	return &types.VerseSchedule{Date: date, VerseReference: "Psalm 23:1"}, nil
}

func TestResolve_ChurchStoreErrorFallsBackToGlobal(t *testing.T) {
	r := NewResolver(&flakyVerses{}, WithLogger(discard))

	v, err := r.Resolve(context.Background(), "2026-03-01", "grace")
	require.NoError(t, err)
	assert.Equal(t, "Psalm 23:1", v.VerseReference)
}

func TestResolve_GlobalStoreErrorIsReturned(t *testing.T) {
	boom := errors.New("database is locked")
	r := NewResolver(&flakyVerses{globalErr: boom}, WithLogger(discard))

	_, err := r.Resolve(context.Background(), "2026-03-01", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, types.ErrNoVerseScheduled)
}
