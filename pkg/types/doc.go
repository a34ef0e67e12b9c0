// Package types defines the cache key, cached artifact, verse schedule and
// statistics types, the Store interfaces implemented by storage backends, and
// the standard errors shared across the devotional cache.
package types
