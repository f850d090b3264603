package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/telecast/internal/db"
	"github.com/stwalsh4118/telecast/internal/logger"
	"github.com/stwalsh4118/telecast/internal/models"
	"github.com/stwalsh4118/telecast/internal/playback"
)

// ChannelHandler serves the admin channel CRUD endpoints
type ChannelHandler struct {
	repos *db.Repositories
	cache *playback.Cache
}

// NewChannelHandler creates a channel admin handler
func NewChannelHandler(repos *db.Repositories, cache *playback.Cache) *ChannelHandler {
	return &ChannelHandler{repos: repos, cache: cache}
}

// ProgramRequest is one lineup entry in a channel create/update payload
type ProgramRequest struct {
	Title      string `json:"title"`
	DurationMs int64  `json:"durationMs" binding:"required,gt=0"`
	IsOffline  bool   `json:"isOffline"`
	SourceKind string `json:"sourceKind"`
	SourcePath string `json:"sourcePath"`
	RatingKey  string `json:"ratingKey"`
	ServerName string `json:"serverName"`
}

// ChannelRequest is the create/update payload for a channel
type ChannelRequest struct {
	Number    int              `json:"number" binding:"required,gt=0"`
	Name      string           `json:"name" binding:"required"`
	Icon      *string          `json:"icon"`
	StartTime *time.Time       `json:"startTime"`
	Programs  []ProgramRequest `json:"programs" binding:"required,min=1,dive"`
}

func (r *ChannelRequest) toModel() *models.Channel {
	start := time.Now().UTC()
	if r.StartTime != nil {
		start = r.StartTime.UTC()
	}
	channel := models.NewChannel(r.Number, r.Name, start)
	channel.Icon = r.Icon
	for i, p := range r.Programs {
		kind := p.SourceKind
		if kind == "" {
			kind = models.SourceFile
		}
		var program *models.Program
		if p.IsOffline {
			program = models.NewOfflineProgram(channel.ID, i, p.DurationMs)
		} else {
			program = models.NewProgram(channel.ID, i, p.Title, p.DurationMs, kind, p.SourcePath)
			program.RatingKey = p.RatingKey
			program.ServerName = p.ServerName
		}
		channel.Programs = append(channel.Programs, *program)
	}
	return channel
}

// List handles GET /api/channels
func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.repos.Channels.List(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list channels")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}
	c.JSON(http.StatusOK, channels)
}

// ListNumbers handles GET /api/channelNumbers
func (h *ChannelHandler) ListNumbers(c *gin.Context) {
	numbers, err := h.repos.Channels.ListNumbers(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list channel numbers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channel numbers"})
		return
	}
	c.JSON(http.StatusOK, numbers)
}

// Get handles GET /api/channel/:number
func (h *ChannelHandler) Get(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel number"})
		return
	}
	channel, err := h.repos.Channels.GetByNumber(c.Request.Context(), number)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
			return
		}
		logger.Log.Error().Err(err).Int("channel", number).Msg("Failed to load channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load channel"})
		return
	}
	c.JSON(http.StatusOK, channel)
}

// Create handles POST /api/channel
func (h *ChannelHandler) Create(c *gin.Context) {
	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	channel := req.toModel()
	if err := h.repos.Channels.Create(c.Request.Context(), channel); err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Channel number already in use"})
			return
		}
		logger.Log.Error().Err(err).Int("channel", req.Number).Msg("Failed to create channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	logger.Log.Info().Int("channel", channel.Number).Str("name", channel.Name).Msg("Channel created")
	c.JSON(http.StatusCreated, channel)
}

// Update handles PUT /api/channel
func (h *ChannelHandler) Update(c *gin.Context) {
	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	existing, err := h.repos.Channels.GetByNumber(c.Request.Context(), req.Number)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
			return
		}
		logger.Log.Error().Err(err).Int("channel", req.Number).Msg("Failed to load channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load channel"})
		return
	}

	updated := req.toModel()
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := h.repos.Channels.Update(c.Request.Context(), updated); err != nil {
		logger.Log.Error().Err(err).Int("channel", req.Number).Msg("Failed to update channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
		return
	}

	// Drop any cached config and in-flight playback decision so the next
	// segment request sees the new lineup.
	h.cache.Invalidate(req.Number)

	logger.Log.Info().Int("channel", updated.Number).Str("name", updated.Name).Msg("Channel updated")
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/channel/:number
func (h *ChannelHandler) Delete(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel number"})
		return
	}

	if err := h.repos.Channels.DeleteByNumber(c.Request.Context(), number); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
			return
		}
		logger.Log.Error().Err(err).Int("channel", number).Msg("Failed to delete channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel"})
		return
	}

	h.cache.Invalidate(number)

	logger.Log.Info().Int("channel", number).Msg("Channel deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted"})
}

// SetupChannelRoutes registers the channel admin endpoints under /api
func SetupChannelRoutes(router *gin.Engine, repos *db.Repositories, cache *playback.Cache) {
	handler := NewChannelHandler(repos, cache)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/channels", handler.List)
		apiGroup.GET("/channelNumbers", handler.ListNumbers)
		apiGroup.GET("/channel/:number", handler.Get)
		apiGroup.POST("/channel", handler.Create)
		apiGroup.PUT("/channel", handler.Update)
		apiGroup.DELETE("/channel/:number", handler.Delete)
	}
}
