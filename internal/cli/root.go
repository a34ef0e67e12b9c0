// Package cli implements the devotional command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devotional/internal/config"
	"github.com/mesh-intelligence/devotional/internal/paths"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// exitCodeError carries the process exit code for an error.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func userError(err error) error { return &exitCodeError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitCodeError{code: exitSysError, err: err} }

// state is shared by the commands of one root command.
type state struct {
	flags rootFlags
	cfg   *config.Config
	out   io.Writer
}

// NewRootCmd creates the top-level "devotional" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "devotional",
		Short: "Personalized daily devotionals with a persistent generation cache",
		Long: "devotional serves personalized devotionals for the verse of the day.\n" +
			"Generated content is cached per reader profile and church so each\n" +
			"variant is generated once.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			st.out = cmd.OutOrStdout()
			if cmd.Name() == "version" {
				return nil
			}
			configDir, err := paths.ResolveConfigDir(st.flags.configDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve config dir: %w", err))
			}
			cfg, err := config.Load(configDir)
			if err != nil {
				return userError(err)
			}
			st.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&st.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&st.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&st.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(st),
		newServeCmd(st),
		newDevotionalCmd(st),
		newLookupCmd(st),
		newStatsCmd(st),
		newVerseCmd(st),
		newCacheCmd(st),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "error:", err)

	var coded *exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}
	return exitUserError
}

// dataDir resolves the data directory for the loaded configuration.
func (st *state) dataDir() (string, error) {
	return paths.ResolveDataDir(st.flags.dataDir, st.cfg.DataDir)
}

// storeConfig returns the storage configuration for this invocation.
func (st *state) storeConfig() (types.Config, error) {
	dir, err := st.dataDir()
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return st.cfg.StoreConfig(dir), nil
}

// emit writes v as indented JSON in --json mode and as text otherwise.
func (st *state) emit(v any, text func(w io.Writer)) error {
	if st.flags.jsonMode {
		enc := json.NewEncoder(st.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(st.out)
	return nil
}
