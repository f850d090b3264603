package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stwalsh4118/telecast/internal/models"
)

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "running", SessionRunning.String())
	assert.Equal(t, "stopping", SessionStopping.String())
	assert.Equal(t, "stopped", SessionStopped.String())
	assert.Equal(t, "unknown", SessionState(99).String())
}

func TestSession_InitialState(t *testing.T) {
	session := NewSession(models.DefaultFFmpegSettings(), "Retro TV", "http://127.0.0.1:8000/playlist?channel=3")

	assert.Equal(t, SessionRunning, session.State())
}

func TestSession_WaitBeforeStart(t *testing.T) {
	session := NewSession(models.DefaultFFmpegSettings(), "Retro TV", "http://127.0.0.1:8000/playlist?channel=3")

	assert.ErrorIs(t, session.Wait(), ErrNotStarted)
}

func TestSession_StopIsIdempotent(t *testing.T) {
	session := NewSession(models.DefaultFFmpegSettings(), "Retro TV", "http://127.0.0.1:8000/playlist?channel=3")

	session.Stop()
	assert.Equal(t, SessionStopped, session.State())

	// Second and third stops are no-ops, not panics or state regressions.
	session.Stop()
	session.Stop()
	assert.Equal(t, SessionStopped, session.State())
}

func TestSession_StopWithoutProcess(t *testing.T) {
	session := NewSession(models.DefaultFFmpegSettings(), "Retro TV", "http://127.0.0.1:8000/playlist?channel=3")

	// Stop before any process was launched must still settle the state.
	session.Stop()
	assert.Equal(t, SessionStopped, session.State())
	assert.ErrorIs(t, session.Wait(), ErrNotStarted)
}
