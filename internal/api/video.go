// Package api provides the HTTP handlers: the streaming surface at the
// server root and the admin REST endpoints under /api.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/telecast/internal/db"
	"github.com/stwalsh4118/telecast/internal/lineup"
	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/mediasource"
	"github.com/stwalsh4118/telecast/internal/models"
	"github.com/stwalsh4118/telecast/internal/playback"
	"github.com/stwalsh4118/telecast/internal/streaming"
)

// Response body strings. The external concat process and legacy clients match
// on these, so they are fixed.
const (
	msgNoChannel       = "No Channel Specified"
	msgChannelNotFound = "Channel doesn't exist"
	msgBadEncoderPath  = "FFMPEG path is invalid. The file (executable) doesn't exist."
	msgPlaybackFailed  = "Unable to start playing video."
)

const mpegTSContentType = "video/mp2t"

// VideoHandler serves the streaming surface: the master stream, per-segment
// streams, and the two manifest flavors that chain them together.
type VideoHandler struct {
	cache    *playback.Cache
	repos    *db.Repositories
	resolver mediasource.Resolver

	// localBaseURL is this server's own loopback address; the concat process
	// and manifest generators call back into it.
	localBaseURL string
}

// NewVideoHandler creates the streaming surface handler
func NewVideoHandler(cache *playback.Cache, repos *db.Repositories, resolver mediasource.Resolver, port int) *VideoHandler {
	return &VideoHandler{
		cache:        cache,
		repos:        repos,
		resolver:     resolver,
		localBaseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
	}
}

// Setup handles GET /setup: a static informational slate for when no
// channels are configured, served through the same encoder path as real
// streams.
func (h *VideoHandler) Setup(c *gin.Context) {
	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load encoder settings")
		return
	}
	if err := streaming.CheckEncoderPath(settings); err != nil {
		logger.Log.Error().Str("ffmpeg_path", settings.FFmpegPath).Msg("The FFMPEG path is invalid. Please check your configuration.")
		c.String(http.StatusInternalServerError, msgBadEncoderPath)
		return
	}

	logger.Log.Info().Msg("Stream starting. Channel: 1 (telecast)")

	args := streaming.BuildSlateArgs(settings,
		"telecast (No Channels Configured)",
		"Configure your channels using the telecast web UI", 0)

	proc, err := streaming.LaunchEncoder(c.Request.Context(), settings.FFmpegPath, args)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to start setup slate")
		c.String(http.StatusInternalServerError, msgPlaybackFailed)
		return
	}
	defer func() {
		if err := proc.Terminate(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to terminate setup slate encoder")
		}
		logger.Log.Info().Msg("Stream ended. Channel: 1 (telecast)")
	}()

	c.Header("Content-Type", mpegTSContentType)
	c.Status(http.StatusOK)
	copyStream(c, proc.Stdout())
}

// Video handles GET /video?channel=N: the outward-facing continuous stream.
// It spawns the concat process against this server's own concat manifest and
// pipes its output to the client.
func (h *VideoHandler) Video(c *gin.Context) {
	number, ok := channelNumberParam(c)
	if !ok {
		c.String(http.StatusInternalServerError, msgNoChannel)
		return
	}

	channel, err := h.cache.GetChannelConfig(c.Request.Context(), number)
	if err != nil {
		if db.IsNotFound(err) {
			c.String(http.StatusInternalServerError, msgChannelNotFound)
			return
		}
		c.String(http.StatusInternalServerError, "Failed to load channel")
		return
	}

	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load encoder settings")
		return
	}
	if err := streaming.CheckEncoderPath(settings); err != nil {
		logger.Log.Error().Str("ffmpeg_path", settings.FFmpegPath).Msg("The FFMPEG path is invalid. Please check your configuration.")
		c.String(http.StatusInternalServerError, msgBadEncoderPath)
		return
	}

	logger.Log.Info().
		Int("channel", channel.Number).
		Str("name", channel.Name).
		Msg("Stream starting")

	playlistURL := fmt.Sprintf("%s/playlist?channel=%d", h.localBaseURL, number)
	session := streaming.NewSession(settings, channel.Name, playlistURL)

	out, err := session.Start(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Int("channel", number).Msg("Failed to start concat session")
		c.String(http.StatusInternalServerError, msgPlaybackFailed)
		return
	}
	defer session.Stop()

	c.Header("Content-Type", mpegTSContentType)
	c.Status(http.StatusOK)

	// Copy until the process closes its output or the client goes away.
	// A client disconnect cancels the request context, which kills the
	// subprocess and unblocks the copy.
	copyStream(c, out)

	if err := session.Wait(); err != nil && !errors.Is(err, streaming.ErrNotStarted) {
		logger.Log.Debug().Err(err).Int("channel", number).Msg("Concat process exited")
	}

	logger.Log.Info().
		Int("channel", channel.Number).
		Str("name", channel.Name).
		Msg("Stream ended")
}

// Stream handles GET /stream?channel=N&first={0,1}&m3u8={0,1}: one bounded
// segment of a channel's transport stream, computed lazily from the
// scheduler. Consumed by the concat process, not by clients directly.
func (h *VideoHandler) Stream(c *gin.Context) {
	if c.Query("channel") == "" {
		c.String(http.StatusBadRequest, msgNoChannel)
		return
	}
	number, err := strconv.Atoi(c.Query("channel"))
	if err != nil {
		c.String(http.StatusBadRequest, msgNoChannel)
		return
	}

	isLoading := c.Query("first") == "0"
	isFirst := c.Query("first") == "1"
	wantM3U8 := c.Query("m3u8") == "1"

	channel, err := h.cache.GetChannelConfig(c.Request.Context(), number)
	if err != nil {
		if db.IsNotFound(err) {
			c.String(http.StatusNotFound, msgChannelNotFound)
			return
		}
		c.String(http.StatusInternalServerError, "Failed to load channel")
		return
	}

	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load encoder settings")
		return
	}
	if err := streaming.CheckEncoderPath(settings); err != nil {
		logger.Log.Error().Str("ffmpeg_path", settings.FFmpegPath).Msg("The FFMPEG path is invalid. Please check your configuration.")
		c.String(http.StatusInternalServerError, msgBadEncoderPath)
		return
	}

	t0 := time.Now().UTC()
	item, fresh, err := resolveLineupItem(h.cache, channel, t0, isFirst, isLoading)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Int("channel", number).
			Msg("No video to play: the channel configuration is corrupted")
		c.String(http.StatusInternalServerError, msgPlaybackFailed)
		return
	}

	logger.Log.Info().
		Int("channel", channel.Number).
		Str("name", channel.Name).
		Str("kind", item.Kind).
		Str("title", item.Title).
		Int64("from_ms", item.StartMs).
		Int64("to_ms", item.StartMs+item.StreamDurationMs).
		Msg("Start playback")

	if fresh && !isLoading {
		h.cache.RecordPlayback(number, t0, item)
	}

	player := streaming.NewPlayer(streaming.PlayerContext{
		Item:     item,
		Settings: settings,
		Channel:  channel,
		M3U8:     wantM3U8,
		Resolver: h.resolver,
	})

	out, err := player.Start(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Int("channel", number).Msg("Error when attempting to play video")
		player.Stop()
		c.String(http.StatusInternalServerError, msgPlaybackFailed)
		return
	}
	defer player.Stop()

	c.Header("Content-Type", mpegTSContentType)
	c.Status(http.StatusOK)
	copyStream(c, out)
}

// M3U8 handles GET /m3u8?channel=N: the HLS-style manifest of segment URLs
func (h *VideoHandler) M3U8(c *gin.Context) {
	number, ok := channelNumberParam(c)
	if !ok {
		c.String(http.StatusInternalServerError, msgNoChannel)
		return
	}

	if _, err := h.cache.GetChannelConfig(c.Request.Context(), number); err != nil {
		if db.IsNotFound(err) {
			c.String(http.StatusInternalServerError, msgChannelNotFound)
			return
		}
		c.String(http.StatusInternalServerError, "Failed to load channel")
		return
	}

	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load encoder settings")
		return
	}

	// Absolute URLs built from the request so external players can fetch
	// segments from wherever they reached us, through whatever scheme.
	baseURL := requestScheme(c) + "://" + c.Request.Host

	c.Header("Content-Type", "application/vnd.apple.mpegurl")
	c.String(http.StatusOK, streaming.BuildHLSManifest(baseURL, number, settings))
}

// ConcatPlaylist handles GET /playlist?channel=N: the concat-demuxer manifest
// the spawned ffmpeg process reads over loopback
func (h *VideoHandler) ConcatPlaylist(c *gin.Context) {
	number, ok := channelNumberParam(c)
	if !ok {
		c.String(http.StatusInternalServerError, msgNoChannel)
		return
	}

	if _, err := h.cache.GetChannelConfig(c.Request.Context(), number); err != nil {
		if db.IsNotFound(err) {
			c.String(http.StatusInternalServerError, msgChannelNotFound)
			return
		}
		c.String(http.StatusInternalServerError, "Failed to load channel")
		return
	}

	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load encoder settings")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, streaming.BuildConcatManifest(h.localBaseURL, number, settings))
}

// resolveLineupItem produces the lineup item for one segment request: the
// fixed loading placeholder for first=0, the cached decision when still
// valid, or a fresh scheduling decision otherwise. fresh reports whether the
// caller should record the decision.
func resolveLineupItem(cache *playback.Cache, channel *models.Channel, t0 time.Time, isFirst, isLoading bool) (models.LineupItem, bool, error) {
	if isLoading {
		return models.NewLoadingItem(), false, nil
	}

	if cached := cache.GetCurrentLineupItem(channel.Number, t0); cached != nil {
		return *cached, false, nil
	}

	dec, err := lineup.ResolveCurrent(channel, t0)
	if err != nil {
		return models.LineupItem{}, false, err
	}

	items := lineup.CreateLineup(dec, channel, isFirst)
	if len(items) == 0 {
		return models.LineupItem{}, false, lineup.ErrNoProgram
	}
	return items[0], true, nil
}

// requestScheme reports the scheme the client used to reach us. Behind a
// TLS-terminating proxy the connection itself is plain HTTP, so the
// X-Forwarded-Proto header wins over the socket state.
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// channelNumberParam extracts the channel query parameter
func channelNumberParam(c *gin.Context) (int, bool) {
	raw := c.Query("channel")
	if raw == "" {
		return 0, false
	}
	number, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return number, true
}

// copyStream pipes a transport stream to the response, flushing as bytes
// arrive so the client sees a live feed rather than buffered chunks.
func copyStream(c *gin.Context, r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				// Client went away; normal cancellation, not an error.
				logger.Log.Debug().Msg("Client closed")
				return
			}
			c.Writer.Flush()
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				logger.Log.Debug().Err(readErr).Msg("Stream read ended")
			}
			return
		}
	}
}

// SetupVideoRoutes registers the streaming surface at the router root
func SetupVideoRoutes(router *gin.Engine, cache *playback.Cache, repos *db.Repositories, resolver mediasource.Resolver, port int) {
	handler := NewVideoHandler(cache, repos, resolver, port)

	router.GET("/setup", handler.Setup)
	router.GET("/video", handler.Video)
	router.GET("/stream", handler.Stream)
	router.GET("/m3u8", handler.M3U8)
	router.GET("/playlist", handler.ConcatPlaylist)
}
