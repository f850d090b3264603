package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/telecast/internal/models"
)

func setupTestDB(t *testing.T) *Repositories {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { _ = database.Close() })
	return NewRepositories(database)
}

func seedChannel(t *testing.T, repos *Repositories, number int, name string) *models.Channel {
	t.Helper()
	channel := models.NewChannel(number, name, time.Unix(0, 0).UTC())
	channel.Programs = append(channel.Programs,
		*models.NewProgram(channel.ID, 0, "A", 600000, models.SourceFile, "/media/a.mp4"),
		*models.NewProgram(channel.ID, 1, "B", 1200000, models.SourceFile, "/media/b.mp4"),
	)
	require.NoError(t, repos.Channels.Create(context.Background(), channel))
	return channel
}

func TestChannelRepository_CreateAndGetByNumber(t *testing.T) {
	repos := setupTestDB(t)
	seedChannel(t, repos, 3, "Retro TV")

	got, err := repos.Channels.GetByNumber(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "Retro TV", got.Name)
	require.Len(t, got.Programs, 2)
	assert.Equal(t, "A", got.Programs[0].Title)
	assert.Equal(t, "B", got.Programs[1].Title)
	assert.Equal(t, int64(1800000), got.TotalDurationMs())
}

func TestChannelRepository_GetByNumber_NotFound(t *testing.T) {
	repos := setupTestDB(t)

	_, err := repos.Channels.GetByNumber(context.Background(), 42)

	assert.True(t, IsNotFound(err))
}

func TestChannelRepository_DuplicateNumber(t *testing.T) {
	repos := setupTestDB(t)
	seedChannel(t, repos, 3, "Retro TV")

	dupe := models.NewChannel(3, "Clone", time.Unix(0, 0).UTC())
	err := repos.Channels.Create(context.Background(), dupe)

	assert.True(t, IsDuplicate(err))
}

func TestChannelRepository_ListNumbers(t *testing.T) {
	repos := setupTestDB(t)
	seedChannel(t, repos, 7, "News")
	seedChannel(t, repos, 3, "Retro TV")

	numbers, err := repos.Channels.ListNumbers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, numbers)
}

func TestChannelRepository_Update_ReplacesPrograms(t *testing.T) {
	repos := setupTestDB(t)
	channel := seedChannel(t, repos, 3, "Retro TV")

	channel.Name = "Retro TV HD"
	channel.Programs = []models.Program{
		*models.NewProgram(channel.ID, 0, "C", 900000, models.SourceFile, "/media/c.mp4"),
	}
	require.NoError(t, repos.Channels.Update(context.Background(), channel))

	got, err := repos.Channels.GetByNumber(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Retro TV HD", got.Name)
	require.Len(t, got.Programs, 1)
	assert.Equal(t, "C", got.Programs[0].Title)
}

func TestChannelRepository_DeleteByNumber(t *testing.T) {
	repos := setupTestDB(t)
	seedChannel(t, repos, 3, "Retro TV")

	require.NoError(t, repos.Channels.DeleteByNumber(context.Background(), 3))

	_, err := repos.Channels.GetByNumber(context.Background(), 3)
	assert.True(t, IsNotFound(err))

	count, err := repos.Channels.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestChannelRepository_DeleteByNumber_NotFound(t *testing.T) {
	repos := setupTestDB(t)

	err := repos.Channels.DeleteByNumber(context.Background(), 42)

	assert.True(t, IsNotFound(err))
}

func TestSettingsRepository_GetCreatesDefaults(t *testing.T) {
	repos := setupTestDB(t)

	settings, err := repos.Settings.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, settings.ID)
	assert.Equal(t, "/usr/bin/ffmpeg", settings.FFmpegPath)
	assert.True(t, settings.FullyNormalized())
}

func TestSettingsRepository_UpdatePersistsFalseFlags(t *testing.T) {
	repos := setupTestDB(t)

	settings, err := repos.Settings.Get(context.Background())
	require.NoError(t, err)

	settings.EnableTranscoding = false
	settings.NormalizeAudio = false
	require.NoError(t, repos.Settings.Update(context.Background(), settings))

	got, err := repos.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, got.EnableTranscoding)
	assert.False(t, got.NormalizeAudio)
	assert.False(t, got.FullyNormalized())
}

func TestSettingsRepository_Reset(t *testing.T) {
	repos := setupTestDB(t)

	settings, err := repos.Settings.Get(context.Background())
	require.NoError(t, err)
	settings.FFmpegPath = "/opt/ffmpeg/bin/ffmpeg"
	require.NoError(t, repos.Settings.Update(context.Background(), settings))

	reset, err := repos.Settings.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ffmpeg", reset.FFmpegPath)
}
