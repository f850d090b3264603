package streaming

import (
	"context"
	"io"
	"sync"

	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/models"
)

// SessionState is the lifecycle of one master stream session
type SessionState int32

// Session lifecycle states
const (
	SessionRunning SessionState = iota
	SessionStopping
	SessionStopped
)

// String returns the string representation of the session state
func (s SessionState) String() string {
	switch s {
	case SessionRunning:
		return "running"
	case SessionStopping:
		return "stopping"
	case SessionStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session owns the concat process behind one client connection on the master
// stream endpoint. Every termination path (process error, process close,
// queue exhaustion, client disconnect) converges on one idempotent Stop.
type Session struct {
	settings    *models.FFmpegSettings
	channelName string
	playlistURL string

	mu    sync.Mutex
	state SessionState
	proc  *Process
}

// NewSession creates a master stream session reading the given concat
// manifest URL, which points back at this server over loopback HTTP.
func NewSession(settings *models.FFmpegSettings, channelName, playlistURL string) *Session {
	return &Session{
		settings:    settings,
		channelName: channelName,
		playlistURL: playlistURL,
	}
}

// State returns the current lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start spawns the concat process and returns its transport stream output
func (s *Session) Start(ctx context.Context) (io.ReadCloser, error) {
	args := BuildConcatArgs(s.playlistURL, s.channelName)

	proc, err := LaunchEncoder(ctx, s.settings.FFmpegPath, args)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != SessionRunning {
		s.mu.Unlock()
		if termErr := proc.Terminate(); termErr != nil {
			logger.Log.Warn().Err(termErr).Msg("Failed to terminate concat process after late stop")
		}
		return nil, ErrAlreadyStopped
	}
	s.proc = proc
	s.mu.Unlock()

	return proc.Stdout(), nil
}

// Wait blocks until the concat process exits. A clean exit means the process
// ran through its whole manifest: either 100 distinct clips played in a row
// or repeated technical failures exhausted every retry the manifest allowed.
// That is end-of-stream, not an error; the client's player re-requesting the
// master endpoint starts a fresh session.
func (s *Session) Wait() error {
	s.mu.Lock()
	proc := s.proc
	s.mu.Unlock()

	if proc == nil {
		return ErrNotStarted
	}

	err := proc.Wait()
	if err == nil {
		logger.Log.Info().
			Str("channel", s.channelName).
			Msg("Video queue exhausted: either 100 different clips played in a row or technical issues made all 100 attempts fail")
	}
	return err
}

// Stop tears the session down: terminates the concat process if one is
// running and marks the session stopped. Idempotent; a concurrent or repeated
// call returns immediately. Termination failures are logged and swallowed so
// teardown always completes.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != SessionRunning {
		s.mu.Unlock()
		return
	}
	s.state = SessionStopping
	proc := s.proc
	s.mu.Unlock()

	if proc != nil {
		if err := proc.Terminate(); err != nil {
			logger.Log.Warn().
				Err(err).
				Int("pid", proc.PID()).
				Str("channel", s.channelName).
				Msg("Failed to terminate concat process")
		}
	}

	s.mu.Lock()
	s.state = SessionStopped
	s.mu.Unlock()

	logger.Log.Debug().
		Str("channel", s.channelName).
		Msg("Stream session stopped")
}
