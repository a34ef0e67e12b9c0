package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devotional/internal/devotional"
)

func newLookupCmd(st *state) *cobra.Command {
	var k keyFlags
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up a cached devotional without generating",
		Long: "Look up the cached devotional for an exact key. A hit counts as an\n" +
			"access. Exits 1 when nothing is cached.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := devotional.Normalize(k.request())
			if err != nil {
				return userError(err)
			}

			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.cache.Lookup(cmd.Context(), key)
			if err != nil {
				return sysError(err)
			}
			if !res.Hit {
				return userError(fmt.Errorf("no cached devotional for %s", key))
			}
			art := res.Artifact
			return st.emit(art, func(w io.Writer) {
				fmt.Fprintf(w, "id:            %s\n", art.ID)
				fmt.Fprintf(w, "key:           %s\n", art.Key)
				fmt.Fprintf(w, "model:         %s\n", art.LLMModel)
				fmt.Fprintf(w, "access count:  %d\n", art.AccessCount)
				fmt.Fprintf(w, "created:       %s\n", art.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(w, "last accessed: %s\n", art.LastAccessed.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(w, "\n%s\n", art.Content.Reflection)
			})
		},
	}
	k.register(cmd)
	cmd.MarkFlagRequired("verse")
	return cmd
}
