package streaming

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/stwalsh4118/telecast/internal/logger"
)

const (
	// Process termination timeouts. Termination must be prompt enough that a
	// reconnect to the same channel does not contend with a lingering process
	// still holding the output pipe.
	terminationTimeout = 5 * time.Second
	killTimeout        = 2 * time.Second
)

// Process wraps a running ffmpeg subprocess whose stdout carries MPEG-TS.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	waitOnce sync.Once
	waitErr  error
	done     chan struct{}
}

// LaunchEncoder starts the ffmpeg executable with the given arguments and
// returns a handle whose Stdout carries the transport stream. Stderr is
// captured and logged in the background.
func LaunchEncoder(ctx context.Context, ffmpegPath string, args []string) (*Process, error) {
	if len(args) == 0 {
		return nil, errors.New("empty encoder argument list")
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	p := &Process{
		cmd:    cmd,
		stdout: stdout,
		done:   make(chan struct{}),
	}

	go captureEncoderOutput(cmd.Process.Pid, stderr)

	logger.Log.Debug().
		Int("pid", cmd.Process.Pid).
		Str("ffmpeg_path", ffmpegPath).
		Strs("head_args", args[:minInt(6, len(args))]).
		Msg("Encoder process launched")

	return p, nil
}

// Stdout returns the process's transport stream output
func (p *Process) Stdout() io.ReadCloser {
	return p.stdout
}

// PID returns the subprocess identifier
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Wait blocks until the process exits and returns its exit error, safe to
// call from multiple goroutines.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
		close(p.done)
	})
	<-p.done
	return p.waitErr
}

// Terminate stops the process gracefully (SIGTERM) then forcefully (SIGKILL)
// if it does not exit in time. Safe to call on an already-dead process.
func (p *Process) Terminate() error {
	pid := p.cmd.Process.Pid

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	exitChan := make(chan struct{})
	go func() {
		p.Wait() // nolint:errcheck // exit status handled by the session monitor
		close(exitChan)
	}()

	select {
	case <-exitChan:
		logger.Log.Debug().Int("pid", pid).Msg("Encoder process terminated gracefully")
		return nil
	case <-time.After(terminationTimeout):
		logger.Log.Warn().
			Int("pid", pid).
			Dur("timeout", terminationTimeout).
			Msg("Encoder process didn't exit gracefully, sending SIGKILL")

		if err := p.cmd.Process.Kill(); err != nil {
			if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
				return nil
			}
			return fmt.Errorf("failed to kill process: %w", err)
		}

		select {
		case <-exitChan:
			return nil
		case <-time.After(killTimeout):
			return fmt.Errorf("process %d did not die after SIGKILL", pid)
		}
	}
}

// captureEncoderOutput logs ffmpeg stderr. Progress chatter goes to debug,
// lines that look like errors go to error level.
func captureEncoderOutput(pid int, reader io.Reader) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if looksLikeError(line) {
			logger.Log.Error().
				Int("ffmpeg_pid", pid).
				Str("output", line).
				Msg("Encoder error output")
		} else {
			logger.Log.Debug().
				Int("ffmpeg_pid", pid).
				Str("output", line).
				Msg("Encoder output")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Log.Warn().
			Err(err).
			Int("ffmpeg_pid", pid).
			Msg("Error reading encoder output")
	}
}

func looksLikeError(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "fatal")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
