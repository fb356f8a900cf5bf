package cli

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeek_EmptySpool(t *testing.T) {
	path := seedSpool(t)
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPeekCommand(rootOpts)

	out, err := execCommand(t, cmd, "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "spool is empty")
}

func TestPeek_TextOutput(t *testing.T) {
	path := seedSpool(t, `{"a":1}`, `{"b":2}`, `{"c":3}`)
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPeekCommand(rootOpts)

	out, err := execCommand(t, cmd, "--db", path, "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "cursor: 2")
	assert.Contains(t, out, `{"a":1}`)
	assert.Contains(t, out, `{"b":2}`)
	assert.NotContains(t, out, `{"c":3}`)
}

func TestPeek_DoesNotAcknowledge(t *testing.T) {
	path := seedSpool(t, `{"a":1}`, `{"b":2}`)
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewPeekCommand(rootOpts)

	_, err := execCommand(t, cmd, "--db", path)
	require.NoError(t, err)
	assert.Equal(t, 2, spoolCount(t, path), "peek must not delete")
}

func TestPeek_JSONOutput(t *testing.T) {
	path := seedSpool(t, `{"a":1}`, `{"b":2}`)
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewPeekCommand(rootOpts)

	out, err := execCommand(t, cmd, "--db", path, "--limit", "2")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "peek_batch", []byte(out))
}
