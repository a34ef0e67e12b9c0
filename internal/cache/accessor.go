// Package cache is the only read and write path for cached devotionals. It
// owns the composite-key lookup, the access accounting performed on every hit,
// and the statistics derived from the artifact table.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// LookupResult is the outcome of Accessor.Lookup. Artifact is set only on a hit
// and carries the row as it was before the access counters were bumped.
type LookupResult struct {
	Hit      bool
	Artifact *types.CachedArtifact
}

// Accessor reads and writes artifacts through a types.ArtifactStore. It keeps
// no process memory between calls; every operation is a store round trip.
type Accessor struct {
	store  types.ArtifactStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Accessor) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the clock used for last_accessed and creation times.
func WithClock(now func() time.Time) Option {
	return func(a *Accessor) {
		if now != nil {
			a.now = now
		}
	}
}

// New returns an Accessor backed by store.
func New(store types.ArtifactStore, opts ...Option) *Accessor {
	a := &Accessor{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Lookup returns the artifact stored for key. A miss is a zero LookupResult and
// a nil error. A store failure is logged and returned; callers treat it as a
// miss. On a hit the artifact's counters are bumped by id, and a failed bump is
// logged without hiding the hit.
func (a *Accessor) Lookup(ctx context.Context, key types.CacheKey) (LookupResult, error) {
	if err := key.Validate(); err != nil {
		return LookupResult{}, err
	}

	artifact, err := a.store.FindArtifact(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		a.logger.DebugContext(ctx, "cache miss", "key", key.String())
		return LookupResult{}, nil
	}
	if err != nil {
		a.logger.ErrorContext(ctx, "cache lookup failed", "key", key.String(), "error", err)
		return LookupResult{}, fmt.Errorf("cache lookup: %w", err)
	}

	if err := a.store.TouchArtifact(ctx, artifact.ID, a.now()); err != nil {
		a.logger.WarnContext(ctx, "cache access accounting failed", "id", artifact.ID, "error", err)
	}

	a.logger.DebugContext(ctx, "cache hit", "key", key.String(), "id", artifact.ID)
	return LookupResult{Hit: true, Artifact: artifact}, nil
}

// Store writes content for key, replacing any artifact already stored for it.
// A write failure is logged and returned; callers still deliver the content.
func (a *Accessor) Store(ctx context.Context, key types.CacheKey, content types.DevotionalContent, modelID string) (*types.CachedArtifact, error) {
	artifact, err := a.store.UpsertArtifact(ctx, key, content, modelID, a.now())
	if err != nil {
		a.logger.ErrorContext(ctx, "cache store failed", "key", key.String(), "error", err)
		return nil, fmt.Errorf("cache store: %w", err)
	}
	a.logger.InfoContext(ctx, "cache stored", "key", key.String(), "id", artifact.ID)
	return artifact, nil
}

// Stats aggregates a full scan of the artifact table.
func (a *Accessor) Stats(ctx context.Context) (types.CacheStats, error) {
	rows, err := a.store.ListArtifactAccess(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "cache stats failed", "error", err)
		return types.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}

	var stats types.CacheStats
	verses := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		stats.TotalEntries++
		stats.TotalAccesses += r.AccessCount
		verses[r.VerseReference] = struct{}{}
	}
	stats.UniqueVerses = int64(len(verses))
	return stats, nil
}
