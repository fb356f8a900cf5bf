package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// PeekOptions holds flags for the peek command.
type PeekOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// PeekResult is an extracted batch rendered for inspection.
type PeekResult struct {
	Cursor  int64             `json:"cursor"`
	Events  []json.RawMessage `json:"events"`
	Skipped int               `json:"skipped,omitempty"`
}

func (r PeekResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cursor: %d", r.Cursor)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, " (%d malformed skipped)", r.Skipped)
	}
	for _, e := range r.Events {
		b.WriteString("\n")
		b.Write(e)
	}
	return b.String()
}

// NewPeekCommand creates the peek command.
func NewPeekCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PeekOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Read the oldest events without acknowledging them",
		Long: `Read up to --limit of the oldest spooled events in creation order.

Nothing is deleted: peek is a dry run of what the delivery worker would
send next. Feed the printed cursor to "spool ack" to acknowledge the batch.

Examples:
  spool peek --db ./spool.db
  spool peek --db ./spool.db --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeek(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum events to read")

	return cmd
}

func runPeek(opts *PeekOptions, cmd *cobra.Command) error {
	st := store.New(opts.Database)
	batch, err := st.ExtractBatch(cmd.Context(), opts.Limit)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "peek failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if batch == nil {
		if opts.Format == "json" {
			return out.Success(nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "spool is empty")
		return nil
	}

	return out.Success(PeekResult{
		Cursor:  batch.Cursor,
		Events:  batch.Records,
		Skipped: batch.Skipped,
	})
}
