package types

import "time"

// CachedArtifact is a persisted devotional for one CacheKey together with its
// access accounting. AccessCount starts at 1 when the row is written and grows
// by one on every cache hit.
type CachedArtifact struct {
	ID           string            `json:"id"`
	Key          CacheKey          `json:"key"`
	Content      DevotionalContent `json:"content"`
	LLMModel     string            `json:"llm_model,omitempty"`
	AccessCount  int64             `json:"access_count"`
	LastAccessed time.Time         `json:"last_accessed"`
	CreatedAt    time.Time         `json:"created_at"`
}
