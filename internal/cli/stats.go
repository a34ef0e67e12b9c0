package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type statsOutput struct {
	TotalCachedDevotionals    int64 `json:"total_cached_devotionals"`
	TotalTimesServedFromCache int64 `json:"total_times_served_from_cache"`
	UniqueVersesCached        int64 `json:"unique_verses_cached"`
	EstimatedAPICallsSaved    int64 `json:"estimated_api_calls_saved"`
}

func newStatsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.cache.Stats(cmd.Context())
			if err != nil {
				return sysError(err)
			}
			out := statsOutput{
				TotalCachedDevotionals:    stats.TotalEntries,
				TotalTimesServedFromCache: stats.TotalAccesses,
				UniqueVersesCached:        stats.UniqueVerses,
				EstimatedAPICallsSaved:    stats.EstimatedCallsSaved(),
			}
			return st.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "cached devotionals:     %d\n", out.TotalCachedDevotionals)
				fmt.Fprintf(w, "times served:           %d\n", out.TotalTimesServedFromCache)
				fmt.Fprintf(w, "unique verses:          %d\n", out.UniqueVersesCached)
				fmt.Fprintf(w, "generation calls saved: %d\n", out.EstimatedAPICallsSaved)
			})
		},
	}
}
