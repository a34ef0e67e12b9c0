package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Lookup and validation errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidKey      = errors.New("invalid cache key")
	ErrInvalidSchedule = errors.New("invalid verse schedule")
	ErrInvalidID       = errors.New("invalid artifact ID")
)

// Orchestration errors.
var (
	// ErrNoVerseScheduled means neither the church nor the global schedule
	// has a verse for the requested date. It is a configuration gap, not a
	// generation failure.
	ErrNoVerseScheduled = errors.New("no verse scheduled for today")

	// ErrGenerationFailed wraps failures of the external text generator.
	ErrGenerationFailed = errors.New("devotional generation failed")
)
