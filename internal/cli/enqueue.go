package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/store"
)

// EnqueueOptions holds flags for the enqueue command.
type EnqueueOptions struct {
	*RootOptions
	Database string
}

// EnqueueResult reports the spool depth after an insert.
type EnqueueResult struct {
	Count int `json:"count"`
}

func (r EnqueueResult) String() string {
	return fmt.Sprintf("spooled (%d pending)", r.Count)
}

// NewEnqueueCommand creates the enqueue command.
func NewEnqueueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnqueueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enqueue <payload>",
		Short: "Append one event payload to the spool",
		Long: `Append one serialized event to the spool.

The payload must be a single JSON document. Pass "-" to read it from stdin.
The write is refused when the backing file has outgrown the free space left
on the volume.

Examples:
  spool enqueue --db ./spool.db '{"event":"login","user":"u-1"}'
  cat event.json | spool enqueue --db ./spool.db -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnqueue(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the spool database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runEnqueue(opts *EnqueueOptions, arg string, cmd *cobra.Command) error {
	payload := []byte(arg)
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return &ExitError{Code: ExitCommandError, Message: "read payload from stdin", Err: err}
		}
		payload = bytes.TrimSpace(data)
	}

	// The store treats payloads as opaque, but a payload that is not JSON
	// would be silently skipped at extraction time. Refuse it here instead.
	if !json.Valid(payload) {
		return &ExitError{Code: ExitCommandError, Message: "payload is not valid JSON"}
	}

	st := store.New(opts.Database)
	count, err := st.Insert(cmd.Context(), payload)
	if errors.Is(err, store.ErrRejected) {
		return &ExitError{Code: ExitFailure, Message: "event rejected", Err: err}
	}
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: "enqueue failed", Err: err}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(EnqueueResult{Count: count})
}
