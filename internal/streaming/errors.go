package streaming

import "errors"

// Common streaming errors
var (
	// ErrEncoderNotFound indicates the configured ffmpeg executable does not
	// exist on disk. A configuration error, surfaced immediately and never
	// retried.
	ErrEncoderNotFound = errors.New("ffmpeg executable not found at configured path")

	// ErrAlreadyStopped indicates an operation on a session that has already
	// completed its teardown.
	ErrAlreadyStopped = errors.New("session already stopped")

	// ErrNotStarted indicates the playback or session was used before Start.
	ErrNotStarted = errors.New("playback not started")
)
