package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(st *state) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long: "Create the configuration file and the data directory, then initialize\n" +
			"the database. With --seed the built-in verse schedule is imported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.close()

			if seed {
				n, err := a.store.SeedFallbackVerses(cmd.Context())
				if err != nil {
					return sysError(fmt.Errorf("seed verses: %w", err))
				}
				fmt.Fprintf(st.out, "Seeded %d verses\n", n)
			}
			fmt.Fprintf(st.out, "Initialized %s\n", a.store.DataDir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "import the built-in verse schedule")
	return cmd
}
