package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// StatusResult summarizes the spool's state.
type StatusResult struct {
	Path     string `json:"path"`
	Events   int    `json:"events"`
	FileSize int64  `json:"file_size"`
}

func (r StatusResult) String() string {
	return fmt.Sprintf("path: %s\nevents: %d\nfile size: %d bytes", r.Path, r.Events, r.FileSize)
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show spool depth and file size",
		Long: `Show how many events are spooled and how large the backing file is.

Example:
  spool status --db ./spool.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	st := store.New(opts.Database)

	count, err := st.Count(cmd.Context())
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "status failed", Err: err}
	}
	size, err := st.FileSize()
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "status failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(StatusResult{Path: st.Path(), Events: count, FileSize: size})
}
