package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secretCommand(in io.Reader) (*cobra.Command, *bytes.Buffer) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "login"}
	cmd.SetIn(in)
	cmd.SetErr(&stderr)
	return cmd, &stderr
}

func TestReadSecret_PipedInput(t *testing.T) {
	cmd, stderr := secretCommand(strings.NewReader("s3cret-pass\r\nignored\n"))

	secret, err := readSecret(cmd)

	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", secret)
	assert.Empty(t, stderr.String())
}

func TestReadSecret_PipeFileIsNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	_, err = w.WriteString("from-pipe")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cmd, _ := secretCommand(r)
	secret, err := readSecret(cmd)

	require.NoError(t, err)
	assert.Equal(t, "from-pipe", secret)
}

func TestReadSecret_EmptyInput(t *testing.T) {
	cmd, _ := secretCommand(strings.NewReader(""))

	_, err := readSecret(cmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read password")
}
