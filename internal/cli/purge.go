package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// PurgeOptions holds flags for the purge command.
type PurgeOptions struct {
	*RootOptions
	Database string
	Before   string
}

// PurgeResult reports the spool depth after an age-based deletion.
type PurgeResult struct {
	Before    int64 `json:"before"` // threshold in ms since epoch
	Remaining int   `json:"remaining"`
}

func (r PurgeResult) String() string {
	return fmt.Sprintf("purged events created at or before %s (%d remaining)",
		time.UnixMilli(r.Before).UTC().Format(time.RFC3339), r.Remaining)
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PurgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete events by age",
		Long: `Delete every event created at or before the given time.

--before accepts milliseconds since epoch or an RFC 3339 timestamp. This is
also the way to clear malformed rows that no acknowledgement cursor covers.

Examples:
  spool purge --db ./spool.db --before 2026-08-01T00:00:00Z
  spool purge --db ./spool.db --before 1754006400000`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Before, "before", "", "threshold as ms since epoch or RFC 3339 (required)")
	_ = cmd.MarkFlagRequired("before")

	return cmd
}

func runPurge(opts *PurgeOptions, cmd *cobra.Command) error {
	threshold, err := parseThreshold(opts.Before)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "invalid --before value", Err: err}
	}

	st := store.New(opts.Database)
	remaining, err := st.DeleteOlderThan(cmd.Context(), threshold)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "purge failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(PurgeResult{Before: threshold, Remaining: remaining})
}

// parseThreshold accepts milliseconds since epoch or RFC 3339.
func parseThreshold(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("want ms since epoch or RFC 3339, got %q", s)
	}
	return ts.UnixMilli(), nil
}
