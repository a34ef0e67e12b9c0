package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.1.0-dev"

const modulePath = "github.com/mesh-intelligence/devotional"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the devotional version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "devotional v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
