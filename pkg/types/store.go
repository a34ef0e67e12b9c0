package types

import (
	"context"
	"time"
)

// ArtifactStore is the persistence contract for cached artifacts.
type ArtifactStore interface {
	// FindArtifact returns the artifact stored for key. The church id is
	// matched exactly, with the global variant matching only itself.
	// Returns ErrNotFound when no row matches.
	FindArtifact(ctx context.Context, key CacheKey) (*CachedArtifact, error)

	// TouchArtifact increments access_count by one and sets last_accessed for
	// the artifact with the given id. Returns ErrNotFound if the id is unknown.
	TouchArtifact(ctx context.Context, id string, at time.Time) error

	// UpsertArtifact writes content for key, replacing any existing row for
	// the same key. The stored row starts over with access_count 1.
	UpsertArtifact(ctx context.Context, key CacheKey, content DevotionalContent, model string, at time.Time) (*CachedArtifact, error)

	// ListArtifactAccess returns the verse reference and access count of
	// every stored artifact.
	ListArtifactAccess(ctx context.Context) ([]ArtifactAccess, error)
}

// VerseStore is the persistence contract for the dated verse schedule.
type VerseStore interface {
	// FindVerse returns the schedule row for (date, churchID). An empty
	// churchID addresses the global schedule. Returns ErrNotFound when absent.
	FindVerse(ctx context.Context, date string, churchID string) (*VerseSchedule, error)

	// UpsertVerses writes rows keyed by (date, church id) in one transaction.
	UpsertVerses(ctx context.Context, verses []VerseSchedule) (int, error)

	// SummarizeVerses reports the row count and date range of the schedule.
	SummarizeVerses(ctx context.Context) (ScheduleSummary, error)
}

// Store is a storage backend holding both tables. Callers attach to a
// backend, use it, and detach when done.
type Store interface {
	ArtifactStore
	VerseStore

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error
}

// ArtifactAccess is one row of the statistics scan.
type ArtifactAccess struct {
	VerseReference string
	AccessCount    int64
}
