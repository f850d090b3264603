package streaming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchEncoder_EmptyArgs(t *testing.T) {
	_, err := LaunchEncoder(context.Background(), "/usr/bin/ffmpeg", nil)

	assert.Error(t, err)
}

func TestLaunchEncoder_MissingExecutable(t *testing.T) {
	_, err := LaunchEncoder(context.Background(), "/no/such/ffmpeg", []string{"-version"})

	assert.Error(t, err)
}

func TestProcess_TerminateAfterExit(t *testing.T) {
	proc, err := LaunchEncoder(context.Background(), "/bin/sh", []string{"-c", "exit 0"})
	require.NoError(t, err)
	require.NoError(t, proc.Wait())

	// Signalling a process that already exited is a no-op, not an error.
	assert.NoError(t, proc.Terminate())
}

func TestProcess_WaitIsRepeatable(t *testing.T) {
	proc, err := LaunchEncoder(context.Background(), "/bin/sh", []string{"-c", "exit 0"})
	require.NoError(t, err)

	assert.NoError(t, proc.Wait())
	assert.NoError(t, proc.Wait())
}

func TestLooksLikeError(t *testing.T) {
	assert.True(t, looksLikeError("Error opening input file"))
	assert.True(t, looksLikeError("conversion failed!"))
	assert.False(t, looksLikeError("frame= 240 fps= 24 q=28.0"))
}
