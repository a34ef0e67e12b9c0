// Package verse resolves the verse of the day from the dated schedule and
// imports schedule rows from CSV and JSONL sources.
package verse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Resolver finds the scheduled verse for a date, preferring a church's own
// schedule and falling back to the global one.
type Resolver struct {
	store  types.VerseStore
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocation sets the time zone that decides which calendar date is "today".
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver returns a Resolver over store. The default time zone is UTC.
func NewResolver(store types.VerseStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		loc:    time.UTC,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today returns the current calendar date in the resolver's time zone. It is
// computed on every call.
func (r *Resolver) Today() string {
	return r.now().In(r.loc).Format(types.DateLayout)
}

// ResolveToday returns today's verse for churchID (empty for global).
func (r *Resolver) ResolveToday(ctx context.Context, churchID string) (*types.VerseSchedule, error) {
	return r.Resolve(ctx, r.Today(), churchID)
}

// Resolve returns the verse scheduled on date. A church-specific row wins;
// otherwise the global row is used. Returns types.ErrNoVerseScheduled when
// neither exists.
func (r *Resolver) Resolve(ctx context.Context, date string, churchID string) (*types.VerseSchedule, error) {
	if churchID != "" {
		v, err := r.store.FindVerse(ctx, date, churchID)
		switch {
		case err == nil:
			return v, nil
		case !errors.Is(err, types.ErrNotFound):
			r.logger.WarnContext(ctx, "church verse lookup failed, using global schedule",
				"date", date, "church_id", churchID, "error", err)
		}
	}

	v, err := r.store.FindVerse(ctx, date, "")
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrNoVerseScheduled, date)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "verse lookup failed", "date", date, "error", err)
		return nil, fmt.Errorf("resolve verse: %w", err)
	}
	return v, nil
}
