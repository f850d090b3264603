package streaming

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/mediasource"
	"github.com/stwalsh4118/telecast/internal/models"
)

// PlayerContext carries everything a single segment playback needs: the
// resolved lineup item, the encoder settings, the channel, and whether the
// caller will wrap the bytes for an HLS manifest (affects nothing about
// scheduling).
type PlayerContext struct {
	Item     models.LineupItem
	Settings *models.FFmpegSettings
	Channel  *models.Channel
	M3U8     bool
	Resolver mediasource.Resolver
}

// Player resolves one lineup item into a byte stream by invoking the encoder
// with the strategy matching the item kind: a synthetic slate for offline and
// loading items, a direct transcode for file programs, and a remote-media
// resolve plus transcode for remote programs.
type Player struct {
	pc PlayerContext

	mu      sync.Mutex
	proc    *Process
	stopped bool
}

// NewPlayer creates a player for one segment request
func NewPlayer(pc PlayerContext) *Player {
	return &Player{pc: pc}
}

// Start launches the encoder for the lineup item and returns the transport
// stream. The caller owns copying the stream to the response and must call
// Stop when done, on failure, or on client disconnect.
func (p *Player) Start(ctx context.Context) (io.ReadCloser, error) {
	args, err := p.buildArgs(ctx)
	if err != nil {
		return nil, err
	}

	proc, err := LaunchEncoder(ctx, p.pc.Settings.FFmpegPath, args)
	if err != nil {
		return nil, fmt.Errorf("failed to start playback: %w", err)
	}

	p.mu.Lock()
	if p.stopped {
		// Stopped while launching; tear the process down immediately.
		p.mu.Unlock()
		if termErr := proc.Terminate(); termErr != nil {
			logger.Log.Warn().Err(termErr).Msg("Failed to terminate encoder after late stop")
		}
		return nil, ErrAlreadyStopped
	}
	p.proc = proc
	p.mu.Unlock()

	return proc.Stdout(), nil
}

// Stop releases the player's resources, terminating any subprocess it owns.
// Idempotent: a second call is a no-op. Teardown failures are logged, never
// propagated, so a secondary failure can't mask the primary one.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	proc := p.proc
	p.mu.Unlock()

	if proc != nil {
		if err := proc.Terminate(); err != nil {
			logger.Log.Warn().
				Err(err).
				Int("pid", proc.PID()).
				Msg("Failed to terminate segment encoder")
		}
	}
}

// buildArgs selects the playback strategy for the lineup item
func (p *Player) buildArgs(ctx context.Context) ([]string, error) {
	item := &p.pc.Item

	switch item.Kind {
	case models.LineupKindLoading:
		return BuildSlateArgs(p.pc.Settings, "Loading...", "", item.StreamDurationMs), nil

	case models.LineupKindOffline:
		subtitle := ""
		if p.pc.Channel != nil {
			subtitle = p.pc.Channel.Name
		}
		return BuildSlateArgs(p.pc.Settings, "Channel Offline", subtitle, item.StreamDurationMs), nil

	case models.LineupKindProgram:
		if item.Program == nil {
			return nil, fmt.Errorf("program lineup item has no program reference")
		}

		sourceURL := item.Program.SourcePath
		if item.Program.SourceKind == models.SourceRemote {
			if p.pc.Resolver == nil {
				return nil, mediasource.ErrNotConfigured
			}
			resolved, err := p.pc.Resolver.ResolveStreamURL(ctx, item.Program)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve remote media: %w", err)
			}
			sourceURL = resolved
		}
		if sourceURL == "" {
			return nil, fmt.Errorf("program %q has no source", item.Program.Title)
		}

		return BuildSegmentArgs(item, p.pc.Settings, sourceURL), nil

	default:
		return nil, fmt.Errorf("unknown lineup item kind %q", item.Kind)
	}
}
