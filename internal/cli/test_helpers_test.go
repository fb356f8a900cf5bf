package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spool/internal/store"
)

// execCommand runs a command with the given args and captures stdout.
func execCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seedSpool creates a spool file with the given payloads and returns its path.
func seedSpool(t *testing.T, payloads ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spool.db")
	st := store.New(path)
	for _, p := range payloads {
		_, err := st.Insert(context.Background(), []byte(p))
		require.NoError(t, err)
	}
	return path
}

// spoolCount returns the number of events in the spool at path.
func spoolCount(t *testing.T, path string) int {
	t.Helper()
	count, err := store.New(path).Count(context.Background())
	require.NoError(t, err)
	return count
}
