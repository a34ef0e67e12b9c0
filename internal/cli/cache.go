package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached devotionals",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "export <path>",
		Short: "Export every cached devotional as JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.store.ExportArtifacts(cmd.Context(), args[0])
			if err != nil {
				return sysError(err)
			}
			fmt.Fprintf(st.out, "Exported %d devotionals to %s\n", n, args[0])
			return nil
		},
	})
	return cmd
}
