package types

// CacheStats aggregates the artifact table.
type CacheStats struct {
	TotalEntries  int64 `json:"total_entries"`
	TotalAccesses int64 `json:"total_accesses"`
	UniqueVerses  int64 `json:"unique_verses"`
}

// EstimatedCallsSaved counts every access beyond each artifact's first.
func (s CacheStats) EstimatedCallsSaved() int64 {
	return s.TotalAccesses - s.TotalEntries
}
