package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/telecast/internal/db"
	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/models"
)

// SettingsHandler serves the encoder settings endpoints
type SettingsHandler struct {
	repos *db.Repositories
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(repos *db.Repositories) *SettingsHandler {
	return &SettingsHandler{repos: repos}
}

// FFmpegSettingsRequest is the update payload for encoder settings
type FFmpegSettingsRequest struct {
	FFmpegPath          string `json:"ffmpegPath" binding:"required"`
	EnableTranscoding   bool   `json:"enableTranscoding"`
	NormalizeVideoCodec bool   `json:"normalizeVideoCodec"`
	NormalizeAudioCodec bool   `json:"normalizeAudioCodec"`
	NormalizeResolution bool   `json:"normalizeResolution"`
	NormalizeAudio      bool   `json:"normalizeAudio"`
	VideoCodec          string `json:"videoCodec"`
	AudioCodec          string `json:"audioCodec"`
	TargetResolution    string `json:"targetResolution"`
	AudioChannels       int    `json:"audioChannels"`
}

// Get handles GET /api/ffmpeg-settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.repos.Settings.Get(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load encoder settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load encoder settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update handles PUT /api/ffmpeg-settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req FFmpegSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	defaults := models.DefaultFFmpegSettings()
	settings := &models.FFmpegSettings{
		ID:                  1,
		FFmpegPath:          req.FFmpegPath,
		EnableTranscoding:   req.EnableTranscoding,
		NormalizeVideoCodec: req.NormalizeVideoCodec,
		NormalizeAudioCodec: req.NormalizeAudioCodec,
		NormalizeResolution: req.NormalizeResolution,
		NormalizeAudio:      req.NormalizeAudio,
		VideoCodec:          req.VideoCodec,
		AudioCodec:          req.AudioCodec,
		TargetResolution:    req.TargetResolution,
		AudioChannels:       req.AudioChannels,
	}
	if settings.VideoCodec == "" {
		settings.VideoCodec = defaults.VideoCodec
	}
	if settings.AudioCodec == "" {
		settings.AudioCodec = defaults.AudioCodec
	}
	if settings.TargetResolution == "" {
		settings.TargetResolution = defaults.TargetResolution
	}
	if settings.AudioChannels == 0 {
		settings.AudioChannels = defaults.AudioChannels
	}

	if err := h.repos.Settings.Update(c.Request.Context(), settings); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to update encoder settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update encoder settings"})
		return
	}

	logger.Log.Info().Str("ffmpeg_path", settings.FFmpegPath).Msg("Encoder settings updated")
	c.JSON(http.StatusOK, settings)
}

// Reset handles POST /api/ffmpeg-settings/reset
func (h *SettingsHandler) Reset(c *gin.Context) {
	settings, err := h.repos.Settings.Reset(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to reset encoder settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset encoder settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetupSettingsRoutes registers the encoder settings endpoints under /api
func SetupSettingsRoutes(router *gin.Engine, repos *db.Repositories) {
	handler := NewSettingsHandler(repos)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/ffmpeg-settings", handler.Get)
		apiGroup.PUT("/ffmpeg-settings", handler.Update)
		apiGroup.POST("/ffmpeg-settings/reset", handler.Reset)
	}
}
