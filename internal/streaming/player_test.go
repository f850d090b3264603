package streaming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/telecast/internal/mediasource"
	"github.com/stwalsh4118/telecast/internal/models"
)

func loadingPlayer(ffmpegPath string) *Player {
	settings := models.DefaultFFmpegSettings()
	settings.FFmpegPath = ffmpegPath
	return NewPlayer(PlayerContext{
		Item:     models.NewLoadingItem(),
		Settings: settings,
	})
}

func TestPlayer_StopIsIdempotent(t *testing.T) {
	player := loadingPlayer("/usr/bin/ffmpeg")

	// Repeated stops with no process behind them are no-ops, not panics.
	player.Stop()
	player.Stop()
	player.Stop()
}

func TestPlayer_StopBeforeStart(t *testing.T) {
	// The executable only has to launch; the loading slate args are
	// meaningless to a shell and it exits straight away.
	player := loadingPlayer("/bin/sh")
	player.Stop()

	out, err := player.Start(context.Background())

	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrAlreadyStopped)
}

func TestPlayer_Start_UnknownKind(t *testing.T) {
	settings := models.DefaultFFmpegSettings()
	player := NewPlayer(PlayerContext{
		Item:     models.LineupItem{Kind: "interstitial"},
		Settings: settings,
	})
	defer player.Stop()

	_, err := player.Start(context.Background())

	assert.Error(t, err)
}

func TestPlayer_Start_ProgramWithoutReference(t *testing.T) {
	settings := models.DefaultFFmpegSettings()
	player := NewPlayer(PlayerContext{
		Item:     models.LineupItem{Kind: models.LineupKindProgram, StreamDurationMs: 30000},
		Settings: settings,
	})
	defer player.Stop()

	_, err := player.Start(context.Background())

	require.Error(t, err)
}

func TestPlayer_Start_RemoteWithoutResolver(t *testing.T) {
	settings := models.DefaultFFmpegSettings()
	program := &models.Program{SourceKind: models.SourceRemote, RatingKey: "12345"}
	player := NewPlayer(PlayerContext{
		Item: models.LineupItem{
			Kind:             models.LineupKindProgram,
			Program:          program,
			StreamDurationMs: 30000,
		},
		Settings: settings,
	})
	defer player.Stop()

	_, err := player.Start(context.Background())

	assert.ErrorIs(t, err, mediasource.ErrNotConfigured)
}
