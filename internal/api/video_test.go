package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/telecast/internal/db"
	"github.com/stwalsh4118/telecast/internal/models"
	"github.com/stwalsh4118/telecast/internal/playback"
)

// setupVideoTest creates a router with the streaming surface backed by a real
// temp-file database, seeded with channel 3 anchored at the epoch:
// A (600000ms), B (1200000ms), C (900000ms).
func setupVideoTest(t *testing.T) (*gin.Engine, *db.Repositories, *playback.Cache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate())
	t.Cleanup(func() { _ = database.Close() })

	repos := db.NewRepositories(database)
	cache := playback.NewCache(repos.Channels)

	channel := models.NewChannel(3, "Retro TV", time.Unix(0, 0).UTC())
	for i, spec := range []struct {
		title      string
		durationMs int64
	}{
		{"A", 600000}, {"B", 1200000}, {"C", 900000},
	} {
		p := models.NewProgram(channel.ID, i, spec.title, spec.durationMs, models.SourceFile, "/media/"+spec.title+".mp4")
		channel.Programs = append(channel.Programs, *p)
	}
	require.NoError(t, repos.Channels.Create(context.Background(), channel))

	router := gin.New()
	SetupVideoRoutes(router, cache, repos, nil, 8000)
	return router, repos, cache
}

// breakEncoderPath points the stored settings at a path that cannot exist so
// handlers fail the encoder check before any subprocess is spawned.
func breakEncoderPath(t *testing.T, repos *db.Repositories) {
	t.Helper()
	settings, err := repos.Settings.Get(context.Background())
	require.NoError(t, err)
	settings.FFmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	require.NoError(t, repos.Settings.Update(context.Background(), settings))
}

func doRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestM3U8_UnknownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/m3u8?channel=99")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgChannelNotFound, w.Body.String())
}

func TestM3U8_MissingChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/m3u8")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgNoChannel, w.Body.String())
}

func TestM3U8_KnownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/m3u8?channel=3")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "#EXTM3U\n#EXT-X-VERSION:3\n"))
	// Segment URLs are rooted at whatever host the request arrived on.
	assert.Contains(t, body, "http://example.com/stream?channel=3&first=1&m3u8=1")
}

func TestM3U8_ForwardedProto(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/m3u8?channel=3", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com/stream?channel=3&first=1&m3u8=1")
}

func TestPlaylist_KnownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/playlist?channel=3")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "ffconcat version 1.0\n"))
	// Concat entries always point back over loopback, never at the request host.
	assert.Contains(t, body, "file 'http://127.0.0.1:8000/stream?channel=3&first=1'")
}

func TestPlaylist_UnknownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/playlist?channel=99")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgChannelNotFound, w.Body.String())
}

func TestStream_MissingChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/stream")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoChannel, w.Body.String())
}

func TestStream_UnknownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/stream?channel=99")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgChannelNotFound, w.Body.String())
}

func TestStream_BadEncoderPath(t *testing.T) {
	router, repos, _ := setupVideoTest(t)
	breakEncoderPath(t, repos)

	w := doRequest(router, "/stream?channel=3")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgBadEncoderPath, w.Body.String())
}

func TestVideo_MissingChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/video")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgNoChannel, w.Body.String())
}

func TestVideo_UnknownChannel(t *testing.T) {
	router, _, _ := setupVideoTest(t)

	w := doRequest(router, "/video?channel=99")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgChannelNotFound, w.Body.String())
}

func TestVideo_BadEncoderPath_NoSpawn(t *testing.T) {
	router, repos, _ := setupVideoTest(t)
	breakEncoderPath(t, repos)

	w := doRequest(router, "/video?channel=3")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgBadEncoderPath, w.Body.String())
}

func TestSetup_BadEncoderPath(t *testing.T) {
	router, repos, _ := setupVideoTest(t)
	breakEncoderPath(t, repos)

	w := doRequest(router, "/setup")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgBadEncoderPath, w.Body.String())
}

func TestResolveLineupItem_LocatesProgramAtInstant(t *testing.T) {
	_, _, cache := setupVideoTest(t)

	channel, err := cache.GetChannelConfig(context.Background(), 3)
	require.NoError(t, err)

	t0 := time.Unix(0, 0).UTC().Add(1800000 * time.Millisecond)
	item, fresh, err := resolveLineupItem(cache, channel, t0, true, false)

	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, models.LineupKindProgram, item.Kind)
	assert.Equal(t, "C", item.Title)
	assert.Equal(t, int64(0), item.StartMs)
	assert.Equal(t, int64(900000), item.StreamDurationMs)
}

func TestResolveLineupItem_MidProgramOffset(t *testing.T) {
	_, repos, cache := setupVideoTest(t)

	// A single hour-long program; half an hour after the anchor the decision
	// must land in its middle, not at a boundary.
	channel := models.NewChannel(5, "Movies", time.Unix(0, 0).UTC())
	channel.Programs = append(channel.Programs,
		*models.NewProgram(channel.ID, 0, "Feature", 3600000, models.SourceFile, "/media/feature.mp4"))
	require.NoError(t, repos.Channels.Create(context.Background(), channel))

	got, err := cache.GetChannelConfig(context.Background(), 5)
	require.NoError(t, err)

	t0 := time.Unix(0, 0).UTC().Add(1800000 * time.Millisecond)
	item, fresh, err := resolveLineupItem(cache, got, t0, true, false)

	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "Feature", item.Title)
	assert.Equal(t, int64(1800000), item.StartMs)
	assert.Equal(t, int64(1800000), item.StreamDurationMs)
	assert.Equal(t, int64(3600000), item.DurationMs)
}

func TestResolveLineupItem_LoadingPlaceholder(t *testing.T) {
	_, _, cache := setupVideoTest(t)

	channel, err := cache.GetChannelConfig(context.Background(), 3)
	require.NoError(t, err)

	item, fresh, err := resolveLineupItem(cache, channel, time.Now().UTC(), false, true)

	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, models.LineupKindLoading, item.Kind)
	assert.Equal(t, int64(1000), item.StreamDurationMs)
}

func TestResolveLineupItem_ReusesRecordedDecision(t *testing.T) {
	_, _, cache := setupVideoTest(t)

	channel, err := cache.GetChannelConfig(context.Background(), 3)
	require.NoError(t, err)

	t0 := time.Unix(0, 0).UTC().Add(100000 * time.Millisecond)
	first, fresh, err := resolveLineupItem(cache, channel, t0, true, false)
	require.NoError(t, err)
	require.True(t, fresh)
	cache.RecordPlayback(channel.Number, t0, first)

	// A follow-up request inside the recorded window must see the same item,
	// not a re-derived one.
	second, fresh, err := resolveLineupItem(cache, channel, t0.Add(5*time.Second), false, false)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, first, second)

	// Past the window the decision is derived fresh again.
	third, fresh, err := resolveLineupItem(cache, channel, t0.Add(time.Duration(first.StreamDurationMs)*time.Millisecond), false, false)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.NotEqual(t, first.Title, third.Title)
}
