package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// WipeOptions holds flags for the wipe command.
type WipeOptions struct {
	*RootOptions
	Database string
}

// WipeResult confirms the spool was destroyed.
type WipeResult struct {
	Wiped bool `json:"wiped"`
}

func (r WipeResult) String() string {
	return "spool wiped"
}

// NewWipeCommand creates the wipe command.
func NewWipeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WipeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Destroy the spool",
		Long: `Delete the backing file outright. Every spooled event is lost; the next
operation recreates an empty spool.

Example:
  spool wipe --db ./spool.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWipe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runWipe(opts *WipeOptions, cmd *cobra.Command) error {
	st := store.New(opts.Database)
	if err := st.Wipe(); err != nil {
		return &ExitError{Code: ExitFailure, Message: "wipe failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(WipeResult{Wiped: true})
}
