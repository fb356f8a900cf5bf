package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// AckOptions holds flags for the ack command.
type AckOptions struct {
	*RootOptions
	Database string
	Cursor   int64
}

// AckResult reports the spool depth after an acknowledgement.
type AckResult struct {
	Cursor    int64 `json:"cursor"`
	Remaining int   `json:"remaining"`
}

func (r AckResult) String() string {
	return fmt.Sprintf("acknowledged through %d (%d remaining)", r.Cursor, r.Remaining)
}

// NewAckCommand creates the ack command.
func NewAckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Delete events up to a cursor",
		Long: `Delete every event with id at or below the cursor.

Paired with the cursor printed by "spool peek" this removes exactly the
peeked batch, including any malformed rows it skipped.

Example:
  spool ack --db ./spool.db --cursor 42`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64Var(&opts.Cursor, "cursor", 0, "acknowledge events with id <= cursor (required)")
	_ = cmd.MarkFlagRequired("cursor")

	return cmd
}

func runAck(opts *AckOptions, cmd *cobra.Command) error {
	st := store.New(opts.Database)
	remaining, err := st.DeleteUpTo(cmd.Context(), opts.Cursor)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "ack failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(AckResult{Cursor: opts.Cursor, Remaining: remaining})
}
